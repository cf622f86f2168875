// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/pkg/text"
)

// Packet kinds used in metrics and logs.
const (
	KindChat      = "chat"
	KindActionBar = "actionbar"
	KindTitle     = "title"
)

// Title action names and their positions in the canonical action
// ordering. Some host builds obfuscate the constant names but keep the
// positions, so lookups try the name first and fall back to the ordinal.
const (
	actionTimes      = "TIMES"
	ordinalTimes     = 1
	actionActionBar  = "ACTIONBAR"
	ordinalActionBar = 2
)

// actionConstant resolves a title action: exact, case-sensitive name match,
// else the constant at ordinal.
func actionConstant(enum *host.Class, name string, ordinal int) (*host.EnumConstant, error) {
	if c, ok := enum.EnumConstant(name); ok {
		return c, nil
	}
	constants := enum.EnumConstants()
	if ordinal < 0 || ordinal >= len(constants) {
		return nil, oops.In("adapter").
			With("enum", enum.Name).
			With("action", name).
			With("ordinal", ordinal).
			Errorf("no title action %s and no constant at ordinal %d", name, ordinal)
	}
	return constants[ordinal], nil
}

// MessagePacket builds a chat packet carrying c.
func (b *Binding) MessagePacket(c text.Component) (*host.Object, error) {
	if !b.Capable() {
		return nil, errIncapable(b.reason)
	}
	payload, err := text.Serialize(c)
	if err != nil {
		return nil, errConstruction(KindChat, err)
	}
	component, err := b.acc.serialize(payload)
	if err != nil {
		return nil, errConstruction(KindChat, err)
	}
	pkt, err := b.acc.chatPacket(component)
	if err != nil {
		return nil, errConstruction(KindChat, err)
	}
	recordPacket(KindChat)
	return pkt, nil
}

// TitlePacket builds a title packet. Only TIMES titles are supported; the
// other kinds return ErrUnsupportedTitleKind. Hosts without a title packet
// return ErrTitleUnavailable.
func (b *Binding) TitlePacket(t text.Title) (*host.Object, error) {
	if !b.Capable() {
		return nil, errIncapable(b.reason)
	}
	if !b.CanMakeTitle() {
		return nil, oops.In("adapter").
			Code(CodeTitleUnavailable).
			With("version", b.version.String()).
			Wrap(ErrTitleUnavailable)
	}

	switch t.Kind() {
	case text.KindTimes:
		action, err := actionConstant(b.acc.titleActions, actionTimes, ordinalTimes)
		if err != nil {
			return nil, errConstruction(KindTitle, err)
		}
		times := t.Times()
		payload, err := json.Marshal([3]int{times.FadeIn, times.Stay, times.FadeOut})
		if err != nil {
			return nil, errConstruction(KindTitle, err)
		}
		component, err := b.acc.serialize(string(payload))
		if err != nil {
			return nil, errConstruction(KindTitle, err)
		}
		pkt, err := b.acc.titlePacket(action, component)
		if err != nil {
			return nil, errConstruction(KindTitle, err)
		}
		recordPacket(KindTitle)
		return pkt, nil
	default:
		// TODO: TITLE, SUBTITLE, ACTIONBAR, CLEAR and RESET need their packet
		// shapes confirmed against each host version before they can be built.
		return nil, oops.In("adapter").
			Code(CodeUnsupportedTitleKind).
			With("kind", t.Kind().String()).
			Wrapf(ErrUnsupportedTitleKind, "title kind %s is not implemented", t.Kind())
	}
}

// ActionBarPacket builds an action bar packet. Hosts without a title
// packet get a chat packet with the same text instead.
func (b *Binding) ActionBarPacket(c text.Component) (*host.Object, error) {
	if !b.CanMakeTitle() {
		return b.MessagePacket(c)
	}
	action, err := actionConstant(b.acc.titleActions, actionActionBar, ordinalActionBar)
	if err != nil {
		return nil, errConstruction(KindActionBar, err)
	}
	payload, err := text.Serialize(c)
	if err != nil {
		return nil, errConstruction(KindActionBar, err)
	}
	component, err := b.acc.serialize(payload)
	if err != nil {
		return nil, errConstruction(KindActionBar, err)
	}
	pkt, err := b.acc.titlePacket(action, component)
	if err != nil {
		return nil, errConstruction(KindActionBar, err)
	}
	recordPacket(KindActionBar)
	return pkt, nil
}
