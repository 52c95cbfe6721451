// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"parley/internal/config"
	"parley/internal/registry"
)

// resourceCompletionFunc suggests the resource tokens the invoked verb
// accepts. The verb is the completing command's name, so the same function
// serves every verb command.
func resourceCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var suggestions []string
	for _, resource := range registry.ResourcesFor(cmd.Name()) {
		if strings.HasPrefix(resource, toComplete) {
			suggestions = append(suggestions, resource)
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// fieldCompletionFunc suggests configuration field names for `parley set`.
func fieldCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var suggestions []string
	for _, name := range config.FieldNames {
		if strings.HasPrefix(name, toComplete) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
