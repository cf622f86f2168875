// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holomush/textbridge/internal/adapter"
)

// ProbeReport is the probe command output.
type ProbeReport struct {
	Profile string   `json:"profile"`
	Digest  string   `json:"digest"`
	Players []string `json:"players"`
	adapter.Report
}

// probeConfig holds configuration for the probe command.
type probeConfig struct {
	jsonOutput bool
}

// NewProbeCmd creates the probe subcommand.
func NewProbeCmd() *cobra.Command {
	cfg := &probeConfig{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Bind to the host and report its capabilities",
		Long: `Load the configured host profile, discover its chat and title packets,
and report whether the host is capable of text delivery.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output the report as JSON")

	return cmd
}

func runProbe(cmd *cobra.Command, cfg *probeConfig) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	report := ProbeReport{
		Profile: s.profile.Name(),
		Digest:  s.profile.Digest(),
		Players: make([]string, 0, len(s.profile.Players())),
		Report:  s.adapter.Binding().Describe(),
	}
	for _, p := range s.profile.Players() {
		report.Players = append(report.Players, p.Name())
	}

	if cfg.jsonOutput {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}
	cmd.Println(formatProbe(report))
	return nil
}

func formatProbe(r ProbeReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "profile:   %s (%s)\n", r.Profile, shortDigest(r.Digest))
	fmt.Fprintf(&b, "version:   %s", r.Version)
	if r.Semver != "" {
		fmt.Fprintf(&b, " (%s)", r.Semver)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "capable:   %t\n", r.Capable)
	fmt.Fprintf(&b, "titles:    %t\n", r.CanMakeTitle)
	fmt.Fprintf(&b, "players:   %s", strings.Join(r.Players, ", "))
	if r.Reason != "" {
		fmt.Fprintf(&b, "\nreason:    %s", r.Reason)
	}
	return b.String()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
