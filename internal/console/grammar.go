// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package console

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/holomush/textbridge/pkg/text"
)

// CodeSyntax marks console input that does not parse.
const CodeSyntax = "CONSOLE_SYNTAX"

var consoleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Command is one console line.
//
// Grammar:
//
//	say <styled> [to <pattern>]
//	bar <styled> [to <pattern>]
//	title <kind> [<fadeIn> <stay> <fadeOut>] [<styled>] [to <pattern>]
//	who
//	status
type Command struct {
	Pos    lexer.Position `parser:""`
	Say    *Say           `parser:"  @@"`
	Bar    *Bar           `parser:"| @@"`
	Title  *Title         `parser:"| @@"`
	Who    bool           `parser:"| @'who'"`
	Status bool           `parser:"| @'status'"`
}

// Styled is quoted text with an optional chat color.
type Styled struct {
	Text  string `parser:"@String"`
	Color string `parser:"('in' @Ident)?"`
}

// Component converts the text to a component.
func (s *Styled) Component() text.Component {
	if s.Color == "" {
		return text.Of(s.Text)
	}
	return text.Colored(s.Color, s.Text)
}

// Target narrows recipients to players whose names match a glob pattern.
type Target struct {
	Pattern string `parser:"'to' @String"`
}

// Say sends a chat message.
type Say struct {
	Text *Styled `parser:"'say' @@"`
	To   *Target `parser:"@@?"`
}

// Bar sends an action bar.
type Bar struct {
	Text *Styled `parser:"'bar' @@"`
	To   *Target `parser:"@@?"`
}

// Title sends a title of the given kind.
type Title struct {
	Kind  string  `parser:"'title' @('times' | 'title' | 'subtitle' | 'actionbar' | 'clear' | 'reset')"`
	Ticks *Ticks  `parser:"@@?"`
	Text  *Styled `parser:"@@?"`
	To    *Target `parser:"@@?"`
}

// Ticks is a fade-in, stay, fade-out triple in ticks.
type Ticks struct {
	FadeIn  int `parser:"@Int"`
	Stay    int `parser:"@Int"`
	FadeOut int `parser:"@Int"`
}

// Payload converts the command to a title.
func (t *Title) Payload() text.Title {
	var c text.Component
	if t.Text != nil {
		c = t.Text.Component()
	}
	switch t.Kind {
	case "times":
		return text.NewTimes(text.Times{FadeIn: t.Ticks.FadeIn, Stay: t.Ticks.Stay, FadeOut: t.Ticks.FadeOut})
	case "title":
		return text.NewTitle(c)
	case "subtitle":
		return text.NewSubtitle(c)
	case "actionbar":
		return text.NewActionBarTitle(c)
	case "clear":
		return text.Clear()
	default:
		return text.Reset()
	}
}

// Name returns the command keyword.
func (c *Command) Name() string {
	switch {
	case c.Say != nil:
		return "say"
	case c.Bar != nil:
		return "bar"
	case c.Title != nil:
		return "title"
	case c.Who:
		return "who"
	default:
		return "status"
	}
}

// Target returns the recipient pattern, or "" for everyone.
func (c *Command) Target() string {
	var t *Target
	switch {
	case c.Say != nil:
		t = c.Say.To
	case c.Bar != nil:
		t = c.Bar.To
	case c.Title != nil:
		t = c.Title.To
	}
	if t == nil {
		return ""
	}
	return t.Pattern
}

var parser = participle.MustBuild[Command](
	participle.Lexer(consoleLexer),
	participle.Unquote("String"),
)

// Parse parses one console line.
func Parse(line string) (*Command, error) {
	cmd, err := parser.ParseString("", line)
	if err != nil {
		return nil, oops.In("console").Code(CodeSyntax).With("line", line).Wrap(err)
	}
	if err := validate(cmd); err != nil {
		return nil, oops.In("console").Code(CodeSyntax).With("line", line).Wrap(err)
	}
	return cmd, nil
}

// validate checks the payload each title kind requires.
func validate(cmd *Command) error {
	t := cmd.Title
	if t == nil {
		return nil
	}
	switch t.Kind {
	case "times":
		if t.Ticks == nil {
			return fmt.Errorf("title times needs fade-in, stay and fade-out ticks")
		}
		if t.Text != nil {
			return fmt.Errorf("title times takes no text")
		}
	case "clear", "reset":
		if t.Ticks != nil || t.Text != nil {
			return fmt.Errorf("title %s takes no arguments", t.Kind)
		}
	default:
		if t.Text == nil {
			return fmt.Errorf("title %s needs text", t.Kind)
		}
		if t.Ticks != nil {
			return fmt.Errorf("title %s takes no ticks", t.Kind)
		}
	}
	return nil
}
