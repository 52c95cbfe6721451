// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"parley/internal/config"
	"parley/internal/logger"
)

// dimColor is used for less important/secondary text in the CLI output
var dimColor = color.New(color.Faint)

var setListFlag bool

var setCmd = &cobra.Command{
	Use:   "set <field> [value]",
	Short: "Read or persist a configuration field",
	Long: `Reads or persists one of the configuration fields: appId, authoringKey,
versionId, endpoint.

With a value, the field is written to the config file. Without a value, the
current persisted value is printed. --list prints every field.

The aliases applicationId (for appId) and endpointBasePath (for endpoint)
are accepted as field names.`,
	Example: `  parley set versionId 0.2
  parley set appId
  parley set --list`,
	Args:              cobra.RangeArgs(0, 2),
	ValidArgsFunction: fieldCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		if setListFlag {
			printConfigFields(cfg)
			return
		}

		switch len(args) {
		case 0:
			_ = cmd.Help()
		case 1:
			value, err := cfg.Field(args[0])
			if err != nil {
				errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if value == "" {
				dimColor.Println("(not set)")
				return
			}
			fmt.Println(value)
		case 2:
			if err := cfg.SetField(args[0], args[1]); err != nil {
				errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := config.Save(cfg); err != nil {
				logger.Errorf("Error saving configuration: %v", err)
				errorColor.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
				os.Exit(1)
			}
			successColor.Printf("%s set to: %s\n", args[0], identifierColor.Sprint(args[1]))
		}
	},
}

func printConfigFields(cfg config.File) {
	path, err := config.DefaultConfigPath()
	if err == nil {
		fmt.Printf("Configuration file: %s\n\n", identifierColor.Sprint(path))
	}
	for _, name := range config.FieldNames {
		value, _ := cfg.Field(name)
		if value == "" {
			fmt.Printf("%-14s %s\n", name+":", dimColor.Sprint("(not set)"))
			continue
		}
		fmt.Printf("%-14s %s\n", name+":", value)
	}
}

func init() {
	setCmd.Flags().BoolVar(&setListFlag, "list", false, "print every configuration field")
	rootCmd.AddCommand(setCmd)
}
