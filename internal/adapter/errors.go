// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error codes for binding, construction, and delivery failures.
const (
	CodeHostIncompatible     = "HOST_INCOMPATIBLE"
	CodeUnknownVersion       = "UNKNOWN_VERSION"
	CodeVersionRejected      = "VERSION_REJECTED"
	CodeNoSerializeMethod    = "NO_SERIALIZE_METHOD"
	CodeBindingPanic         = "BINDING_PANIC"
	CodeIncapable            = "BINDING_INCAPABLE"
	CodePacketConstruction   = "PACKET_CONSTRUCTION"
	CodeUnsupportedTitleKind = "UNSUPPORTED_TITLE_KIND"
	CodeTitleUnavailable     = "TITLE_UNAVAILABLE"
	CodeDeliveryFailed       = "DELIVERY_FAILED"
)

// Sentinel errors. Every error returned by this package wraps one of these
// so callers can tell the failure tiers apart with errors.Is.
var (
	ErrIncompatibleHost     = errors.New("incompatible host")
	ErrSymbolNotFound       = errors.New("host symbol not found")
	ErrIncapable            = errors.New("host binding is incapable")
	ErrPacketConstruction   = errors.New("packet construction failed")
	ErrUnsupportedTitleKind = errors.New("unsupported title kind")
	ErrTitleUnavailable     = errors.New("host has no title packet")
	ErrDelivery             = errors.New("packet delivery failed")
)

func errIncompatibleHost(class, reason string) error {
	return oops.In("adapter").
		Code(CodeHostIncompatible).
		With("server_class", class).
		Wrapf(ErrIncompatibleHost, "%s", reason)
}

func errUnknownVersion(fragment string) error {
	return oops.In("adapter").
		Code(CodeUnknownVersion).
		With("fragment", fragment).
		Wrapf(ErrIncompatibleHost, "unknown version %q", fragment)
}

func errSymbol(cause error) error {
	return oops.In("adapter").Wrap(fmt.Errorf("%w: %w", ErrSymbolNotFound, cause))
}

func errConstruction(packet string, cause error) error {
	return oops.In("adapter").
		Code(CodePacketConstruction).
		With("packet", packet).
		Wrap(fmt.Errorf("%w: %w", ErrPacketConstruction, cause))
}

func errDelivery(viewer string, cause error) error {
	return oops.In("adapter").
		Code(CodeDeliveryFailed).
		With("viewer", viewer).
		Wrap(fmt.Errorf("%w: %w", ErrDelivery, cause))
}

func errIncapable(reason error) error {
	b := oops.In("adapter").Code(CodeIncapable)
	if reason != nil {
		b = b.With("reason", reason.Error())
	}
	return b.Wrap(ErrIncapable)
}
