// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/pkg/text"
)

// packetPrinter writes one line per packet a profile emits.
type packetPrinter struct {
	w    io.Writer
	ansi bool
}

func (p *packetPrinter) emit(conn, packet *host.Object) {
	owner := "?"
	if v, ok := conn.Get("owner"); ok {
		if s, ok := v.(string); ok {
			owner = s
		}
	}
	fmt.Fprintf(p.w, "%s <- %s\n", owner, p.describe(packet))
}

func (p *packetPrinter) describe(packet *host.Object) string {
	parts := []string{packet.Class().SimpleName()}
	if v, ok := packet.Get("action"); ok {
		if e, ok := v.(*host.EnumConstant); ok {
			parts = append(parts, fmt.Sprintf("[%s/%d]", e.Name, e.Ordinal))
		}
	}
	if json, ok := componentJSON(packet); ok {
		if r := p.render(json); r != "" {
			parts = append(parts, r)
		} else {
			parts = append(parts, json)
		}
	}
	if fadeIn, ok := packet.Get("fadeIn"); ok {
		stay, _ := packet.Get("stay")
		fadeOut, _ := packet.Get("fadeOut")
		parts = append(parts, fmt.Sprintf("%v/%v/%v ticks", fadeIn, stay, fadeOut))
	}
	return strings.Join(parts, " ")
}

func (p *packetPrinter) render(json string) string {
	if p.ansi {
		if c, err := text.Deserialize(json); err == nil {
			return text.RenderANSI(c)
		}
	}
	return text.PlainText(json)
}

func componentJSON(packet *host.Object) (string, bool) {
	v, ok := packet.Get("component")
	if !ok {
		return "", false
	}
	c, ok := v.(*host.Object)
	if !ok || c == nil {
		return "", false
	}
	raw, ok := c.Get("json")
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
