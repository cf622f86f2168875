// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"log/slog"

	"github.com/Masterminds/semver/v3"
)

// Policy selects how a send reacts to a delivery failure.
type Policy int

const (
	// PolicyContinue logs the failed recipient and keeps delivering.
	PolicyContinue Policy = iota
	// PolicyFailFast stops at the first failed recipient.
	PolicyFailFast
)

func (p Policy) String() string {
	if p == PolicyFailFast {
		return "fail-fast"
	}
	return "continue"
}

// ParsePolicy parses "continue" or "fail-fast".
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "continue", "":
		return PolicyContinue, true
	case "fail-fast":
		return PolicyFailFast, true
	default:
		return PolicyContinue, false
	}
}

type options struct {
	logger     *slog.Logger
	constraint *semver.Constraints
	policy     Policy
}

// Option configures binding and dispatch.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConstraint only accepts hosts whose version satisfies c.
func WithConstraint(c *semver.Constraints) Option {
	return func(o *options) { o.constraint = c }
}

// WithPolicy sets the delivery failure policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
