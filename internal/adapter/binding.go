// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/pkg/errutil"
)

var tracer = otel.Tracer("github.com/holomush/textbridge/internal/adapter")

// Binding is the resolved set of host accessors for one host version, or
// the record that none could be resolved. A Binding is immutable and safe
// for concurrent use.
type Binding struct {
	version Version
	reason  error
	acc     *accessors
}

// accessors are pre-resolved host entry points. Call sites invoke them
// without any further symbol lookup.
type accessors struct {
	// connection returns the live connection behind a player.
	connection func(player *host.Object) (*host.Object, error)
	// send delivers a packet over a connection.
	send func(conn, packet *host.Object) error
	// serialize turns chat JSON into a host component.
	serialize func(json string) (any, error)
	// chatPacket builds a chat packet from a host component.
	chatPacket func(component any) (*host.Object, error)
	// titlePacket builds a title packet; nil when the host has none.
	titlePacket func(action *host.EnumConstant, component any) (*host.Object, error)
	// titleActions is the title action enum; nil when the host has none.
	titleActions *host.Class
}

// Capable reports whether packets can be built and delivered.
func (b *Binding) Capable() bool {
	return b.acc != nil
}

// CanMakeTitle reports whether the host has a title packet. It is false
// for incapable bindings and never changes.
func (b *Binding) CanMakeTitle() bool {
	return b.acc != nil && b.acc.titlePacket != nil
}

// Version returns the resolved host version. It is the zero Version when
// the host was rejected before classification.
func (b *Binding) Version() Version {
	return b.version
}

// Reason returns why the binding is incapable, or nil.
func (b *Binding) Reason() error {
	return b.reason
}

// Report summarizes a binding for display and logs.
type Report struct {
	Capable      bool   `json:"capable"`
	CanMakeTitle bool   `json:"can_make_title"`
	Version      string `json:"version"`
	Semver       string `json:"semver,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Describe returns a capability report.
func (b *Binding) Describe() Report {
	r := Report{
		Capable:      b.Capable(),
		CanMakeTitle: b.CanMakeTitle(),
		Version:      b.version.String(),
	}
	if sv, err := b.version.Semver(); err == nil {
		r.Semver = sv.String()
	}
	if b.reason != nil {
		r.Reason = b.reason.Error()
	}
	return r
}

// Bind discovers the host's internal delivery channel. It never fails:
// when a required symbol is missing or the host is not recognized, the
// result is an incapable binding whose Reason explains why.
func Bind(ctx context.Context, rt host.Runtime, opts ...Option) *Binding {
	o := newOptions(opts)

	ctx, span := tracer.Start(ctx, "adapter.Bind")
	defer span.End()

	b, err := bind(rt, o)
	if err != nil {
		b.reason = err
		b.acc = nil
		span.SetStatus(codes.Error, "incapable")
		errutil.LogErrorAt(ctx, o.logger, slog.LevelWarn, "host binding unavailable, text delivery disabled", err,
			"version", b.version.String())
	} else {
		span.SetAttributes(
			attribute.String("host.version", b.version.String()),
			attribute.Bool("host.title", b.CanMakeTitle()),
		)
		o.logger.InfoContext(ctx, "host binding ready",
			"version", b.version.String(),
			"title", b.CanMakeTitle())
	}
	recordBinding(b)
	return b
}

func bind(rt host.Runtime, o *options) (b *Binding, err error) {
	b = &Binding{}
	defer func() {
		if r := recover(); r != nil {
			err = oops.In("adapter").
				Code(CodeBindingPanic).
				With("panic", fmt.Sprint(r)).
				Wrapf(ErrIncompatibleHost, "panic while binding: %v", r)
		}
	}()

	if rt == nil || rt.Server() == nil {
		return b, errIncompatibleHost("", "no running server")
	}
	version, err := ResolveVersion(rt.Server().Class())
	if err != nil {
		return b, err
	}
	b.version = version
	if err := checkConstraint(version, o.constraint); err != nil {
		return b, err
	}

	l := NewLocator(rt, version)
	acc, err := bindChat(l)
	if err != nil {
		return b, err
	}
	bindTitle(l, acc, o.logger)
	b.acc = acc
	return b, nil
}

// bindChat resolves the symbols every capable binding needs.
func bindChat(l *Locator) (*accessors, error) {
	craftPlayer, err := l.CraftBukkitClass("entity.CraftPlayer")
	if err != nil {
		return nil, err
	}
	getHandle, err := l.Method(craftPlayer, "getHandle")
	if err != nil {
		return nil, err
	}
	entityPlayer, err := l.Class(getHandle.Returns)
	if err != nil {
		return nil, err
	}
	connField, err := l.Field(entityPlayer, "playerConnection")
	if err != nil {
		return nil, err
	}
	connClass, err := l.Class(connField.Type)
	if err != nil {
		return nil, err
	}
	packet, err := l.MinecraftClass("Packet")
	if err != nil {
		return nil, err
	}
	sendPacket, err := l.Method(connClass, "sendPacket", packet.Name)
	if err != nil {
		return nil, err
	}
	component, err := l.MinecraftClass("IChatBaseComponent")
	if err != nil {
		return nil, err
	}
	chatPacket, err := l.MinecraftClass("PacketPlayOutChat")
	if err != nil {
		return nil, err
	}
	chatCtor, err := l.Constructor(chatPacket, component.Name)
	if err != nil {
		return nil, err
	}
	serializer, err := l.Serializer(component)
	if err != nil {
		return nil, err
	}
	serialize, err := l.SerializeMethod(serializer, component)
	if err != nil {
		return nil, err
	}

	return &accessors{
		connection: func(player *host.Object) (*host.Object, error) {
			handle, err := getHandle.Invoke(player)
			if err != nil {
				return nil, err
			}
			entity, ok := handle.(*host.Object)
			if !ok {
				return nil, oops.In("adapter").With("handle", fmt.Sprintf("%T", handle)).New("player handle is not a host object")
			}
			v, err := connField.Get(entity)
			if err != nil {
				return nil, err
			}
			conn, ok := v.(*host.Object)
			if !ok {
				return nil, oops.In("adapter").With("connection", fmt.Sprintf("%T", v)).New("player connection is not a host object")
			}
			return conn, nil
		},
		send: func(conn, pkt *host.Object) error {
			_, err := sendPacket.Invoke(conn, pkt)
			return err
		},
		serialize: func(json string) (any, error) {
			return serialize.Invoke(nil, json)
		},
		chatPacket: func(component any) (*host.Object, error) {
			return chatCtor.NewInstance(component)
		},
	}, nil
}

// bindTitle resolves the optional title symbols. Hosts predating titles
// lack all of them; a partial set disables titles as well.
func bindTitle(l *Locator, acc *accessors, logger *slog.Logger) {
	titlePacket, ok := l.OptionalMinecraftClass("PacketPlayOutTitle")
	if !ok {
		logger.Debug("host has no title packet")
		return
	}
	action, ok := l.OptionalMinecraftClass("PacketPlayOutTitle$EnumTitleAction")
	if !ok {
		logger.Debug("host title packet has no action enum", "class", titlePacket.Name)
		return
	}
	component, err := l.MinecraftClass("IChatBaseComponent")
	if err != nil {
		return
	}
	ctor, err := l.Constructor(titlePacket, action.Name, component.Name)
	if err != nil {
		logger.Debug("host title packet has no usable constructor", "class", titlePacket.Name)
		return
	}

	acc.titleActions = action
	acc.titlePacket = func(a *host.EnumConstant, component any) (*host.Object, error) {
		return ctor.NewInstance(a, component)
	}
}
