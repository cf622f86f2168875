// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holomush/textbridge/internal/adapter"
	"github.com/holomush/textbridge/internal/console"
	"github.com/holomush/textbridge/pkg/text"
)

// sendConfig holds configuration for the send subcommands.
type sendConfig struct {
	to      string
	color   string
	ansi    bool
	fadeIn  int
	stay    int
	fadeOut int
}

// component builds the styled text of a send.
func (c *sendConfig) component(args []string) text.Component {
	s := strings.Join(args, " ")
	if c.color == "" {
		return text.Of(s)
	}
	return text.Colored(c.color, s)
}

// sendFunc delivers one payload to the selected viewers.
type sendFunc func(ctx context.Context, a *adapter.Adapter, viewers []adapter.Viewer) ([]adapter.Viewer, error)

// NewSendCmd creates the send command group.
func NewSendCmd() *cobra.Command {
	cfg := &sendConfig{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message, action bar, or title to online players",
		Long: `Send text to the players of the configured host. Packets the host
emits are printed one per line.`,
	}

	cmd.PersistentFlags().StringVar(&cfg.to, "to", "", "glob pattern selecting recipients by name (default everyone)")
	cmd.PersistentFlags().StringVar(&cfg.color, "color", "", "chat color name (e.g. gold, red)")
	cmd.PersistentFlags().BoolVar(&cfg.ansi, "ansi", false, "render emitted text with ANSI colors")

	cmd.AddCommand(newSendMessageCmd(cfg))
	cmd.AddCommand(newSendActionBarCmd(cfg))
	cmd.AddCommand(newSendTitleCmd(cfg))

	return cmd
}

func newSendMessageCmd(cfg *sendConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "message <text>...",
		Short: "Send a chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg.component(args)
			return runSend(cmd, cfg, func(ctx context.Context, a *adapter.Adapter, v []adapter.Viewer) ([]adapter.Viewer, error) {
				return a.SendMessage(ctx, v, c)
			})
		},
	}
}

func newSendActionBarCmd(cfg *sendConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "actionbar <text>...",
		Short: "Send an action bar message",
		Long: `Send an action bar message. Hosts without an action bar position
receive it as a chat message.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg.component(args)
			return runSend(cmd, cfg, func(ctx context.Context, a *adapter.Adapter, v []adapter.Viewer) ([]adapter.Viewer, error) {
				return a.SendActionBar(ctx, v, c)
			})
		},
	}
}

func newSendTitleCmd(cfg *sendConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "title <kind> [text]...",
		Short: "Send a title packet",
		Long: `Send a title packet of the given kind: title, subtitle, actionbar,
times, clear, or reset. The times kind takes its durations from
--fade-in, --stay, and --fade-out, in ticks.`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"title", "subtitle", "actionbar", "times", "clear", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := cfg.title(args[0], args[1:])
			if err != nil {
				return err
			}
			return runSend(cmd, cfg, func(ctx context.Context, a *adapter.Adapter, v []adapter.Viewer) ([]adapter.Viewer, error) {
				return a.SendTitle(ctx, v, t)
			})
		},
	}

	cmd.Flags().IntVar(&cfg.fadeIn, "fade-in", 10, "fade-in ticks for times")
	cmd.Flags().IntVar(&cfg.stay, "stay", 70, "stay ticks for times")
	cmd.Flags().IntVar(&cfg.fadeOut, "fade-out", 20, "fade-out ticks for times")

	return cmd
}

// title builds the title payload for kind.
func (c *sendConfig) title(kind string, args []string) (text.Title, error) {
	switch kind {
	case "times", "clear", "reset":
		if len(args) > 0 {
			return text.Title{}, fmt.Errorf("title %s takes no text", kind)
		}
	case "title", "subtitle", "actionbar":
		if len(args) == 0 {
			return text.Title{}, fmt.Errorf("title %s needs text", kind)
		}
	default:
		return text.Title{}, fmt.Errorf("unknown title kind %q", kind)
	}

	switch kind {
	case "times":
		return text.NewTimes(text.Times{FadeIn: c.fadeIn, Stay: c.stay, FadeOut: c.fadeOut}), nil
	case "clear":
		return text.Clear(), nil
	case "reset":
		return text.Reset(), nil
	case "title":
		return text.NewTitle(c.component(args)), nil
	case "subtitle":
		return text.NewSubtitle(c.component(args)), nil
	default:
		return text.NewActionBarTitle(c.component(args)), nil
	}
}

func runSend(cmd *cobra.Command, cfg *sendConfig, send sendFunc) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	printer := &packetPrinter{w: cmd.OutOrStdout(), ansi: cfg.ansi}
	s.profile.OnEmit(printer.emit)

	viewers, err := console.Select(s.roster(), cfg.to)
	if err != nil {
		return err
	}
	rest, err := send(ctx, s.adapter, viewers)
	if err != nil {
		return err
	}
	cmd.Println(console.Summary(len(viewers), rest))
	return nil
}
