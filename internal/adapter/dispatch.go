// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/pkg/errutil"
)

// Viewer is anything a caller may address text to, such as a player or the
// server console.
type Viewer interface {
	Name() string
}

// Player is a viewer backed by a live host connection. Only players with
// a host object receive packets.
type Player interface {
	Viewer
	HostObject() *host.Object
}

// PacketBuilder builds the packet for one send. It is called at most once.
type PacketBuilder func() (*host.Object, error)

// Failure is a delivery failure for one recipient.
type Failure struct {
	Viewer Viewer
	Err    error
}

// Result describes one send.
type Result struct {
	// ID correlates the send across logs. It is zero when nothing was sent.
	ID ulid.ULID
	// Handled lists every recipient a delivery was attempted for, in order,
	// including those in Failures.
	Handled []Viewer
	// Failures lists recipients whose delivery failed.
	Failures []Failure

	handled map[int]struct{}
}

func (r *Result) markHandled(i int, v Viewer) {
	if r.handled == nil {
		r.handled = make(map[int]struct{})
	}
	r.handled[i] = struct{}{}
	r.Handled = append(r.Handled, v)
}

// Remaining returns the viewers of the send that were not handled, in their
// original order. viewers must be the slice passed to the send. When
// nothing was handled viewers is returned as is.
func (r Result) Remaining(viewers []Viewer) []Viewer {
	if len(r.handled) == 0 {
		return viewers
	}
	out := make([]Viewer, 0, len(viewers)-len(r.handled))
	for i, v := range viewers {
		if _, ok := r.handled[i]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Dispatcher delivers one packet per send to every eligible recipient.
type Dispatcher struct {
	binding *Binding
	policy  Policy
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over b.
func NewDispatcher(b *Binding, opts ...Option) *Dispatcher {
	o := newOptions(opts)
	return &Dispatcher{binding: b, policy: o.policy, logger: o.logger}
}

// Send builds a packet with build on the first eligible recipient and
// delivers that same packet to every eligible recipient.
//
// An incapable binding returns immediately without building anything. A
// build failure aborts the send before any delivery. Delivery failures
// are isolated per recipient under PolicyContinue; under PolicyFailFast
// the first one ends the send and is returned.
func (d *Dispatcher) Send(ctx context.Context, kind string, viewers []Viewer, build PacketBuilder) (Result, error) {
	if !d.binding.Capable() {
		return Result{}, nil
	}

	res := Result{ID: ulid.Make()}
	ctx, span := tracer.Start(ctx, "adapter.Send", trace.WithAttributes(
		attribute.String("packet.kind", kind),
		attribute.String("send.id", res.ID.String()),
	))
	defer span.End()

	var pkt *host.Object
	for i, v := range viewers {
		p, ok := v.(Player)
		if !ok || hostObject(p) == nil {
			continue
		}
		if pkt == nil {
			built, err := build()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "packet construction failed")
				return res, err
			}
			pkt = built
		}

		res.markHandled(i, v)
		if err := d.deliver(p, pkt); err != nil {
			err = errDelivery(p.Name(), err)
			res.Failures = append(res.Failures, Failure{Viewer: v, Err: err})
			recordDelivery(kind, StatusFailed)
			span.RecordError(err)
			if d.policy == PolicyFailFast {
				span.SetStatus(codes.Error, "delivery failed")
				return res, err
			}
			errutil.LogErrorAt(ctx, d.logger, slog.LevelWarn, "packet delivery failed", err,
				"send_id", res.ID.String(),
				"kind", kind)
			continue
		}
		recordDelivery(kind, StatusDelivered)
	}

	d.logger.DebugContext(ctx, "packet sent",
		"send_id", res.ID.String(),
		"kind", kind,
		"handled", len(res.Handled),
		"failed", len(res.Failures))
	return res, nil
}

// hostObject returns p's host instance, treating a player whose accessor
// panics (such as a typed nil) as having none.
func hostObject(p Player) (obj *host.Object) {
	defer func() {
		if recover() != nil {
			obj = nil
		}
	}()
	return p.HostObject()
}

func (d *Dispatcher) deliver(p Player, pkt *host.Object) error {
	conn, err := d.binding.acc.connection(p.HostObject())
	if err != nil {
		return err
	}
	return d.binding.acc.send(conn, pkt)
}
