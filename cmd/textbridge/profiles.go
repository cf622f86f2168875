// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	hostlua "github.com/holomush/textbridge/internal/host/lua"
	"github.com/holomush/textbridge/internal/xdg"
)

// NewProfilesCmd creates the profiles subcommand.
func NewProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List available host profiles",
		Long: `List the bundled host profiles and any user profiles found in the
profiles data directory. A user profile shadows a bundled one of the same name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range hostlua.Bundled() {
				cmd.Printf("%s\tbundled\n", name)
			}
			dir, err := xdg.ProfilesDir()
			if err != nil {
				return nil
			}
			for _, name := range userProfiles(dir) {
				cmd.Printf("%s\t%s\n", name, filepath.Join(dir, name+".lua"))
			}
			return nil
		},
	}
}

// userProfiles lists the profile names in dir, sorted. A missing directory
// has none.
func userProfiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".lua"))
	}
	sort.Strings(names)
	return names
}
