// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package console executes operator commands against an adapter: one
// line in, one line of output.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/holomush/textbridge/internal/adapter"
)

// CodeBadPattern marks a recipient pattern that is not a valid glob.
const CodeBadPattern = "CONSOLE_BAD_PATTERN"

// Roster lists the viewers currently online.
type Roster func() []adapter.Viewer

// Recorder observes the outcome of each command.
type Recorder interface {
	RecordCommand(name string, err error)
}

// Console runs commands.
type Console struct {
	adapter  *adapter.Adapter
	roster   Roster
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// WithRecorder sets the command outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Console) { c.recorder = r }
}

// New creates a console over a.
func New(a *adapter.Adapter, roster Roster, opts ...Option) *Console {
	c := &Console{adapter: a, roster: roster, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exec parses and runs one line.
func (c *Console) Exec(ctx context.Context, line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		c.record("invalid", err)
		return "", err
	}
	out, err := c.Run(ctx, cmd)
	c.record(cmd.Name(), err)
	return out, err
}

// Run executes a parsed command.
func (c *Console) Run(ctx context.Context, cmd *Command) (string, error) {
	switch {
	case cmd.Who:
		return c.who(), nil
	case cmd.Status:
		return c.status(), nil
	}

	viewers, err := Select(c.roster(), cmd.Target())
	if err != nil {
		return "", err
	}

	var rest []adapter.Viewer
	switch {
	case cmd.Say != nil:
		rest, err = c.adapter.SendMessage(ctx, viewers, cmd.Say.Text.Component())
	case cmd.Bar != nil:
		rest, err = c.adapter.SendActionBar(ctx, viewers, cmd.Bar.Text.Component())
	case cmd.Title != nil:
		rest, err = c.adapter.SendTitle(ctx, viewers, cmd.Title.Payload())
	}
	if err != nil {
		return "", err
	}
	c.logger.DebugContext(ctx, "console command sent",
		"command", cmd.Name(), "recipients", len(viewers), "unhandled", len(rest))
	return Summary(len(viewers), rest), nil
}

func (c *Console) who() string {
	viewers := c.roster()
	names := make([]string, 0, len(viewers))
	for _, v := range viewers {
		names = append(names, v.Name())
	}
	return fmt.Sprintf("%d online: %s", len(names), strings.Join(names, ", "))
}

func (c *Console) status() string {
	r := c.adapter.Binding().Describe()
	s := fmt.Sprintf("capable=%t title=%t version=%s", r.Capable, r.CanMakeTitle, r.Version)
	if r.Semver != "" {
		s += " semver=" + r.Semver
	}
	if r.Reason != "" {
		s += " reason=" + r.Reason
	}
	return s
}

func (c *Console) record(name string, err error) {
	if c.recorder != nil {
		c.recorder.RecordCommand(name, err)
	}
}

// Summary describes the outcome of a send to total recipients.
func Summary(total int, rest []adapter.Viewer) string {
	handled := total - len(rest)
	s := fmt.Sprintf("handled %d of %d", handled, total)
	if len(rest) > 0 {
		names := make([]string, 0, len(rest))
		for _, v := range rest {
			if v == nil {
				continue
			}
			names = append(names, v.Name())
		}
		s += "; unhandled: " + strings.Join(names, ", ")
	}
	return s
}

// Select returns the viewers whose names match the glob pattern, in order.
// An empty pattern selects every viewer.
func Select(viewers []adapter.Viewer, pattern string) ([]adapter.Viewer, error) {
	if pattern == "" {
		return viewers, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.In("console").Code(CodeBadPattern).With("pattern", pattern).Wrap(err)
	}
	var out []adapter.Viewer
	for _, v := range viewers {
		if v != nil && g.Match(v.Name()) {
			out = append(out, v)
		}
	}
	return out, nil
}
