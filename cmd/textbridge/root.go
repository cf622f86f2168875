// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/textbridge/internal/adapter"
	"github.com/holomush/textbridge/internal/config"
	hostlua "github.com/holomush/textbridge/internal/host/lua"
	"github.com/holomush/textbridge/internal/logging"
	"github.com/holomush/textbridge/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the textbridge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textbridge",
		Short: "textbridge - rich text delivery for CraftBukkit hosts",
		Long: `textbridge binds to a CraftBukkit server's internal chat and title
packets and delivers styled messages, action bars, and titles to players.
Hosts are described by Lua profiles; several are bundled.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.BindFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewProbeCmd())
	cmd.AddCommand(NewSendCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewProfilesCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// session is a bound host shared by the commands that deliver text.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	profile *hostlua.Profile
	adapter *adapter.Adapter
}

// resolveConfigFile returns the --config path, or the default config file
// when it exists.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig loads configuration and installs the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup("textbridge", version, cfg.Log.Format, cfg.LogLevel(), cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openSession loads configuration, opens the configured host profile, and
// binds an adapter to it. Callers must Close the session.
func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var dirs []string
	if d, err := xdg.ProfilesDir(); err == nil {
		dirs = append(dirs, d)
	} else {
		logger.DebugContext(ctx, "user profile directory unavailable", "error", err)
	}

	profile, err := hostlua.Open(ctx, cfg.Host.Profile, dirs...)
	if err != nil {
		return nil, oops.In("cli").With("profile", cfg.Host.Profile).Wrapf(err, "opening host profile")
	}

	opts, err := cfg.AdapterOptions(logger)
	if err != nil {
		profile.Close()
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		profile: profile,
		adapter: adapter.New(adapter.Bind(ctx, profile, opts...), opts...),
	}, nil
}

// roster lists the console followed by every online player.
func (s *session) roster() []adapter.Viewer {
	viewers := []adapter.Viewer{consoleViewer{}}
	for _, p := range s.profile.Players() {
		viewers = append(viewers, p)
	}
	return viewers
}

// Close releases the host profile.
func (s *session) Close() {
	s.profile.Close()
}

// consoleViewer is the server console. It has no connection, so sends to
// it are always left unhandled.
type consoleViewer struct{}

func (consoleViewer) Name() string { return "CONSOLE" }
