// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package text

import (
	"time"
)

// TitleKind identifies what a Title payload changes on the client.
type TitleKind int

// Title kinds in canonical order.
const (
	KindTitle TitleKind = iota
	KindSubtitle
	KindActionBar
	KindTimes
	KindClear
	KindReset
)

var titleKindNames = [...]string{"TITLE", "SUBTITLE", "ACTIONBAR", "TIMES", "CLEAR", "RESET"}

func (k TitleKind) String() string {
	if k < 0 || int(k) >= len(titleKindNames) {
		return "UNKNOWN"
	}
	return titleKindNames[k]
}

// TickDuration is the length of one server tick.
const TickDuration = 50 * time.Millisecond

// Times is the fade-in, stay, and fade-out duration of a title, in ticks.
type Times struct {
	FadeIn  int `json:"fadeIn"`
	Stay    int `json:"stay"`
	FadeOut int `json:"fadeOut"`
}

// TimesOf converts durations to ticks, rounding down.
func TimesOf(fadeIn, stay, fadeOut time.Duration) Times {
	return Times{
		FadeIn:  int(fadeIn / TickDuration),
		Stay:    int(stay / TickDuration),
		FadeOut: int(fadeOut / TickDuration),
	}
}

// Title is one title-channel update.
type Title struct {
	kind      TitleKind
	component Component
	times     Times
}

// NewTitle sets the main title line.
func NewTitle(c Component) Title { return Title{kind: KindTitle, component: c} }

// NewSubtitle sets the subtitle line.
func NewSubtitle(c Component) Title { return Title{kind: KindSubtitle, component: c} }

// NewActionBarTitle sets the action bar through the title channel.
func NewActionBarTitle(c Component) Title { return Title{kind: KindActionBar, component: c} }

// NewTimes sets the display timing of subsequent titles.
func NewTimes(t Times) Title { return Title{kind: KindTimes, times: t} }

// Clear hides the current title.
func Clear() Title { return Title{kind: KindClear} }

// Reset hides the current title and restores default timing.
func Reset() Title { return Title{kind: KindReset} }

// Kind returns the title kind.
func (t Title) Kind() TitleKind { return t.kind }

// Component returns the text of TITLE, SUBTITLE, and ACTIONBAR titles.
func (t Title) Component() Component { return t.component }

// Times returns the timing of a TIMES title.
func (t Title) Times() Times { return t.times }
