// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/holomush/textbridge/internal/config"
)

// schemaConfig holds configuration for the schema command.
type schemaConfig struct {
	output string
}

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	cfg := &schemaConfig{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := config.Schema()
			if err != nil {
				return err
			}
			if cfg.output == "" {
				cmd.Println(string(raw))
				return nil
			}
			return os.WriteFile(cfg.output, append(raw, '\n'), 0o600)
		},
	}

	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "write the schema to a file instead of stdout")

	return cmd
}
