// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"parley/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively configure parley",
	Long: `Starts a short interactive form that captures the authoring key, the
endpoint base URL and optional default app/version ids, and writes them to
the config file. Existing values are pre-filled, so re-running init edits the
configuration rather than replacing it.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := ui.RunWizard(); err != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
