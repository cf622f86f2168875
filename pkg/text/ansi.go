// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package text

import (
	"strings"
)

// ANSI escape code constants
const (
	ansiReset         = "\x1b[0m"
	ansiBold          = "\x1b[1m"
	ansiItalic        = "\x1b[3m"
	ansiUnderline     = "\x1b[4m"
	ansiStrikethrough = "\x1b[9m"
)

// colorNameToANSI maps chat color names to ANSI codes.
var colorNameToANSI = map[string]string{
	"black":        "\x1b[30m",
	"dark_blue":    "\x1b[34m",
	"dark_green":   "\x1b[32m",
	"dark_aqua":    "\x1b[36m",
	"dark_red":     "\x1b[31m",
	"dark_purple":  "\x1b[35m",
	"gold":         "\x1b[33m",
	"gray":         "\x1b[37m",
	"dark_gray":    "\x1b[90m",
	"blue":         "\x1b[94m",
	"green":        "\x1b[92m",
	"aqua":         "\x1b[96m",
	"red":          "\x1b[91m",
	"light_purple": "\x1b[95m",
	"yellow":       "\x1b[93m",
	"white":        "\x1b[97m",
}

// style is the effective style of one run after inheritance.
type style struct {
	bold          bool
	italic        bool
	underline     bool
	strikethrough bool
	color         string // ANSI color code or empty
}

func (s style) inherit(c Component) style {
	s.bold = s.bold || c.Bold
	s.italic = s.italic || c.Italic
	s.underline = s.underline || c.Underlined
	s.strikethrough = s.strikethrough || c.Strikethrough
	if code, ok := colorNameToANSI[c.Color]; ok {
		s.color = code
	}
	return s
}

// RenderANSI renders the component tree with ANSI escape codes for terminals.
// Unknown colors render unstyled.
func RenderANSI(c Component) string {
	var buf strings.Builder
	renderANSI(&buf, c, style{})
	return buf.String()
}

func renderANSI(buf *strings.Builder, c Component, parent style) {
	s := parent.inherit(c)
	if c.Text != "" {
		renderSegmentANSI(buf, c.Text, s)
	}
	for _, child := range c.Extra {
		renderANSI(buf, child, s)
	}
}

// renderSegmentANSI renders a single run to ANSI codes.
func renderSegmentANSI(buf *strings.Builder, text string, s style) {
	if s == (style{}) {
		buf.WriteString(text)
		return
	}

	if s.bold {
		buf.WriteString(ansiBold)
	}
	if s.italic {
		buf.WriteString(ansiItalic)
	}
	if s.underline {
		buf.WriteString(ansiUnderline)
	}
	if s.strikethrough {
		buf.WriteString(ansiStrikethrough)
	}
	if s.color != "" {
		buf.WriteString(s.color)
	}

	buf.WriteString(text)
	buf.WriteString(ansiReset)
}
