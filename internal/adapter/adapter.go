// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package adapter delivers chat messages, action bars, and titles to
// players through a host's internal packet channel.
//
// The host publishes no stable contract for that channel, so Bind
// discovers it at runtime, once, and records what it found in an
// immutable Binding. A host that cannot be bound yields an incapable
// Binding and every send becomes a no-op. A host without a title packet
// still delivers chat, and action bars fall back to chat messages.
package adapter

import (
	"context"
	"sync"

	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/pkg/text"
)

// Adapter is the send surface over one Binding.
//
// Each send returns the viewers it did not handle. A viewer counts as
// handled once delivery to it was attempted, whether or not it succeeded,
// so callers can pass the remainder to another delivery mechanism.
type Adapter struct {
	binding    *Binding
	dispatcher *Dispatcher
}

// New creates an adapter over b.
func New(b *Binding, opts ...Option) *Adapter {
	return &Adapter{binding: b, dispatcher: NewDispatcher(b, opts...)}
}

// Binding returns the adapter's binding.
func (a *Adapter) Binding() *Binding {
	return a.binding
}

// SendMessage delivers c as a chat message.
func (a *Adapter) SendMessage(ctx context.Context, viewers []Viewer, c text.Component) ([]Viewer, error) {
	res, err := a.dispatcher.Send(ctx, KindChat, viewers, func() (*host.Object, error) {
		return a.binding.MessagePacket(c)
	})
	return res.Remaining(viewers), err
}

// SendActionBar delivers c to the action bar, or as a chat message on
// hosts without a title packet.
func (a *Adapter) SendActionBar(ctx context.Context, viewers []Viewer, c text.Component) ([]Viewer, error) {
	res, err := a.dispatcher.Send(ctx, KindActionBar, viewers, func() (*host.Object, error) {
		return a.binding.ActionBarPacket(c)
	})
	return res.Remaining(viewers), err
}

// SendTitle delivers a title update. It does nothing on hosts without a
// title packet.
func (a *Adapter) SendTitle(ctx context.Context, viewers []Viewer, t text.Title) ([]Viewer, error) {
	if !a.binding.CanMakeTitle() {
		return viewers, nil
	}
	res, err := a.dispatcher.Send(ctx, KindTitle, viewers, func() (*host.Object, error) {
		return a.binding.TitlePacket(t)
	})
	return res.Remaining(viewers), err
}

var (
	defaultOnce    sync.Once
	defaultAdapter *Adapter
)

// Default returns the process-wide adapter, binding rt on the first call.
// Later calls return the same adapter and ignore their arguments.
func Default(ctx context.Context, rt host.Runtime, opts ...Option) *Adapter {
	defaultOnce.Do(func() {
		defaultAdapter = New(Bind(ctx, rt, opts...), opts...)
	})
	return defaultAdapter
}
