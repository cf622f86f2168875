// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package text defines the rich-text documents and title payloads that are
// delivered to players, and their JSON wire encoding.
package text

import (
	"encoding/json"
	"strings"

	"github.com/samber/oops"
	"github.com/tidwall/gjson"
)

// Component is a styled run of text with optional children.
// Children inherit the parent's style. Style flags on a child add to the
// inherited ones and cannot clear them; a child color replaces the parent's.
type Component struct {
	Text          string      `json:"text"`
	Color         string      `json:"color,omitempty"`
	Bold          bool        `json:"bold,omitempty"`
	Italic        bool        `json:"italic,omitempty"`
	Underlined    bool        `json:"underlined,omitempty"`
	Strikethrough bool        `json:"strikethrough,omitempty"`
	Obfuscated    bool        `json:"obfuscated,omitempty"`
	Extra         []Component `json:"extra,omitempty"`
}

// Of returns an unstyled component.
func Of(s string) Component {
	return Component{Text: s}
}

// Colored returns a component in the given named color.
func Colored(color, s string) Component {
	return Component{Text: s, Color: color}
}

// Append returns a copy of c with children appended.
func (c Component) Append(children ...Component) Component {
	c.Extra = append(append([]Component(nil), c.Extra...), children...)
	return c
}

// Serialize encodes c in the JSON chat format understood by the host.
func Serialize(c Component) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", oops.In("text").Wrap(err)
	}
	return string(b), nil
}

// Deserialize decodes the JSON chat format. A bare JSON string is accepted
// as an unstyled component.
func Deserialize(s string) (Component, error) {
	var c Component
	if gjson.Parse(s).Type == gjson.String {
		return Of(gjson.Parse(s).String()), nil
	}
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Component{}, oops.In("text").With("json", s).Wrap(err)
	}
	return c, nil
}

// PlainText extracts the unstyled text from a serialized component without
// decoding it into a Component. Unknown shapes yield their raw text.
func PlainText(s string) string {
	if !gjson.Valid(s) {
		return s
	}
	var b strings.Builder
	writePlain(&b, gjson.Parse(s))
	return b.String()
}

func writePlain(b *strings.Builder, v gjson.Result) {
	switch {
	case v.Type == gjson.String:
		b.WriteString(v.String())
	case v.IsArray():
		for _, e := range v.Array() {
			writePlain(b, e)
		}
	case v.IsObject():
		b.WriteString(v.Get("text").String())
		for _, e := range v.Get("extra").Array() {
			writePlain(b, e)
		}
	}
}
