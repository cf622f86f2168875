// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/holomush/textbridge/internal/console"
	"github.com/holomush/textbridge/internal/observability"
)

// serveConfig holds configuration for the serve command.
type serveConfig struct {
	metrics bool
	ansi    bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an operator console against the host",
		Long: `Bind to the host and read console commands from standard input, one
per line, until end of input or a shutdown signal:

  say "text" [in <color>] [to "<pattern>"]
  bar "text" [in <color>] [to "<pattern>"]
  title <kind> [<fadeIn> <stay> <fadeOut>] ["text" [in <color>]] [to "<pattern>"]
  who
  status

Metrics and health probes are served while the console runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.metrics, "metrics", true, "serve metrics and health probes")
	cmd.Flags().BoolVar(&cfg.ansi, "ansi", false, "render emitted text with ANSI colors")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *serveConfig) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	printer := &packetPrinter{w: out, ansi: cfg.ansi}
	s.profile.OnEmit(printer.emit)

	binding := s.adapter.Binding()
	opts := []console.Option{console.WithLogger(s.logger)}

	var obsServer *observability.Server
	if cfg.metrics {
		obsServer = observability.NewServer(s.cfg.Metrics.Addr, binding.Capable)
		obsServer.Metrics().SetProfile(s.profile.Name(), binding.Version().String())
		obsErrChan, err := startObservability(ctx, obsServer, listenBackoff())
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		opts = append(opts, console.WithRecorder(obsServer.Metrics()))
	}

	c := console.New(s.adapter, s.roster, opts...)

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	lines := make(chan string)
	go readLines(ctx, cmd.InOrStdin(), lines)

	s.logger.InfoContext(ctx, "console ready",
		"profile", s.profile.Name(),
		"capable", binding.Capable(),
		"title", binding.CanMakeTitle())

loop:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				slog.Info("end of input, shutting down")
				break loop
			}
			execLine(ctx, c, out, line)
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig)
			break loop
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down")
			break loop
		}
	}

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// listenBackoff retries a busy metrics address a few times, as left behind
// by a process that just exited.
func listenBackoff() retry.Backoff {
	return retry.WithMaxRetries(4, retry.NewExponential(250*time.Millisecond))
}

// startObservability starts srv, retrying while its address is in use.
// Other listen errors fail immediately.
func startObservability(ctx context.Context, srv *observability.Server, backoff retry.Backoff) (<-chan error, error) {
	var errCh <-chan error
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		ch, err := srv.Start()
		if errors.Is(err, syscall.EADDRINUSE) {
			slog.Debug("metrics address in use, retrying", "error", err)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		errCh = ch
		return nil
	})
	return errCh, err
}

// execLine runs one console line and prints its result. Blank lines and
// lines starting with # are ignored.
func execLine(ctx context.Context, c *console.Console, w io.Writer, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	res, err := c.Exec(ctx, line)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintln(w, res)
}

// readLines sends each line of r to lines and closes it at end of input.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
