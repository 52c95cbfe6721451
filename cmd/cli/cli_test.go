// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/request"
)

func TestNormalizeFlagAliases(t *testing.T) {
	assert.EqualValues(t, "appId", normalizeFlagAliases(nil, "applicationId"))
	assert.EqualValues(t, "endpoint", normalizeFlagAliases(nil, "endpointBasePath"))
	assert.EqualValues(t, "versionId", normalizeFlagAliases(nil, "versionId"))
}

func TestArgsFromFlags(t *testing.T) {
	flagIn = "body.json"
	flagWait = true
	flagStaging = true
	flagRegion = "westus"
	flagTargetVersionID = "0.5"
	flagQuery = "book a flight"
	t.Cleanup(func() {
		flagIn = ""
		flagWait = false
		flagStaging = false
		flagRegion = ""
		flagTargetVersionID = ""
		flagQuery = ""
	})

	args := argsFromFlags()

	assert.Equal(t, request.Args{
		In:              "body.json",
		Wait:            true,
		Staging:         true,
		Region:          "westus",
		TargetVersionID: "0.5",
		Q:               "book a flight",
	}, args)
}

func TestArgsFromFlagsExpandsHomeInPath(t *testing.T) {
	flagIn = "~/models/app.json"
	t.Cleanup(func() { flagIn = "" })

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	args := argsFromFlags()
	assert.Equal(t, filepath.Join(home, "models", "app.json"), args.In)
}

func TestResourceCompletionUsesVerb(t *testing.T) {
	get := &cobra.Command{Use: "get <resource>"}

	suggestions, directive := resourceCompletionFunc(get, nil, "")
	assert.Equal(t, []string{"application", "status", "version"}, suggestions)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	suggestions, _ = resourceCompletionFunc(get, nil, "st")
	assert.Equal(t, []string{"status"}, suggestions)

	// A resource already given means nothing more to suggest.
	suggestions, _ = resourceCompletionFunc(get, []string{"status"}, "")
	assert.Empty(t, suggestions)
}

func TestFieldCompletion(t *testing.T) {
	suggestions, directive := fieldCompletionFunc(setCmd, nil, "a")
	assert.Equal(t, []string{"appId", "authoringKey"}, suggestions)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestRootWiresEveryCommand(t *testing.T) {
	want := []string{
		"add", "clone", "delete", "export", "get", "import", "list",
		"publish", "query", "suggest", "train", "update",
		"set", "init", "serve",
	}

	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range want {
		require.True(t, names[name], "command %q is not registered", name)
	}
}

func TestUniversalFlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"in", "wait", "staging", "region", "appId", "versionId",
		"authoringKey", "endpoint", "quiet", "interop", "skip", "take",
		"q", "id", "targetVersionId", "verbose",
	} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag --%s is not registered", name)
	}

	quiet := rootCmd.PersistentFlags().ShorthandLookup("q")
	require.NotNil(t, quiet)
	assert.Equal(t, "quiet", quiet.Name)
}
