// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"parley/internal/config"
	"parley/internal/logger"
)

var (
	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	successColor    = color.New(color.FgGreen)
	identifierColor = color.New(color.FgBlue)
)

// Universal flag values. All verb commands share the root's persistent flag
// set; empty string means the flag was not given.
var (
	flagIn              string
	flagWait            bool
	flagStaging         bool
	flagRegion          string
	flagAppID           string
	flagVersionID       string
	flagAuthoringKey    string
	flagEndpoint        string
	flagQuiet           bool
	flagInterop         bool
	flagSkip            string
	flagTake            string
	flagQuery           string
	flagID              string
	flagTargetVersionID string
	flagVerbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "parley <action> <resource> [flags]",
	Short: "Manage NLU applications from the command line",
	Long: `A command-line client for a versioned NLU authoring service.

Commands take the form 'parley <action> <resource>', e.g. 'parley train
version' or 'parley list applications'. Results are printed as JSON on
stdout; prompts, progress and errors go to stderr.

Configuration (authoring key, endpoint, default app and version ids) merges
command-line flags, the persisted config file and PARLEY_* environment
variables, in that order. Run 'parley init' to set it up interactively.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogger(flagVerbose)
		if err := config.EnsureConfigDir(); err != nil {
			return fmt.Errorf("failed to ensure config directory: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Anything that reaches the root is either a bare invocation or an
		// action token no subcommand claimed; the registry owns the verdict
		// so unknown actions get the catalog's error message.
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		runVerb(args[0], args[1:])
	},
}

func RunCLI() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// normalizeFlagAliases maps the long-form flag spellings kept for
// compatibility onto their canonical names.
func normalizeFlagAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "applicationId":
		name = "appId"
	case "endpointBasePath":
		name = "endpoint"
	}
	return pflag.NormalizedName(name)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagIn, "in", "", "path to a JSON file supplying the request body")
	pf.BoolVar(&flagWait, "wait", false, "poll training status until every model finishes")
	pf.BoolVar(&flagStaging, "staging", false, "publish to the staging slot")
	pf.StringVar(&flagRegion, "region", "", "region to publish to")
	pf.StringVar(&flagAppID, "appId", "", "application id (overrides configured value)")
	pf.StringVar(&flagVersionID, "versionId", "", "version id (overrides configured value)")
	pf.StringVar(&flagAuthoringKey, "authoringKey", "", "authoring key (overrides configured value)")
	pf.StringVar(&flagEndpoint, "endpoint", "", "endpoint base URL (overrides configured value)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress confirmation prompts")
	pf.BoolVar(&flagInterop, "interop", false, "print application results as a tool-interop descriptor")
	pf.StringVar(&flagSkip, "skip", "", "number of entries to skip when listing")
	pf.StringVar(&flagTake, "take", "", "number of entries to return when listing")
	pf.StringVar(&flagQuery, "q", "", "utterance text for query prediction")
	pf.StringVar(&flagID, "id", "", "id of the intent or entity to operate on")
	pf.StringVar(&flagTargetVersionID, "targetVersionId", "", "version id a clone is created as")
	pf.BoolVar(&flagVerbose, "verbose", false, "mirror log output to stderr")
	pf.SetNormalizeFunc(normalizeFlagAliases)

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(updateCmd)
}

var addCmd = &cobra.Command{
	Use:               "add <resource>",
	Short:             "Create an application, intent, entity or utterance",
	Example:           "  parley add application --in app.json\n  parley add intent --in intent.json",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("add", args)
	},
}

var cloneCmd = &cobra.Command{
	Use:               "clone version",
	Short:             "Clone a version into a new version id",
	Long:              "Clones the active version into a new version. Without --targetVersionId the next minor version is derived from the source version id.",
	Example:           "  parley clone version\n  parley clone version --versionId 0.1 --targetVersionId 0.5",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("clone", args)
	},
}

var deleteCmd = &cobra.Command{
	Use:               "delete <resource>",
	Short:             "Delete an application, version, intent or entity",
	Long:              "Deletes a resource. Deleting an application asks for confirmation first; pass --quiet to skip the prompt.",
	Example:           "  parley delete application\n  parley delete version --versionId 0.2\n  parley delete intent --id 3f2e...",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("delete", args)
	},
}

var exportCmd = &cobra.Command{
	Use:               "export version",
	Short:             "Export a version as JSON",
	Example:           "  parley export version > travel-agent-0.1.json",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("export", args)
	},
}

var getCmd = &cobra.Command{
	Use:               "get <resource>",
	Short:             "Fetch an application, version or training status",
	Example:           "  parley get application\n  parley get status --wait",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("get", args)
	},
}

var importCmd = &cobra.Command{
	Use:               "import <resource>",
	Short:             "Import an application or version from JSON",
	Example:           "  parley import application --in app.json\n  parley import version --in version.json",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("import", args)
	},
}

var listCmd = &cobra.Command{
	Use:               "list <resource>",
	Short:             "List applications, versions, intents, entities or utterances",
	Example:           "  parley list applications\n  parley list intents --skip 0 --take 25",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("list", args)
	},
}

var publishCmd = &cobra.Command{
	Use:               "publish version",
	Short:             "Publish a version to an endpoint slot",
	Example:           "  parley publish version --versionId 0.2 --region westus\n  parley publish version --staging",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("publish", args)
	},
}

var queryCmd = &cobra.Command{
	Use:               "query prediction",
	Short:             "Query the published model with an utterance",
	Example:           `  parley query prediction --q "book a flight to paris"`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("query", args)
	},
}

var suggestCmd = &cobra.Command{
	Use:               "suggest utterances",
	Short:             "Fetch suggested example utterances for review",
	Example:           "  parley suggest utterances --take 10",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("suggest", args)
	},
}

var trainCmd = &cobra.Command{
	Use:               "train version",
	Short:             "Train the active version's models",
	Long:              "Queues a training run for the version. With --wait, polls the training status every second and reports per-round progress until every model finishes.",
	Example:           "  parley train version\n  parley train version --wait",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("train", args)
	},
}

var updateCmd = &cobra.Command{
	Use:               "update application",
	Short:             "Update an application's name or description",
	Example:           "  parley update application --in rename.json",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: resourceCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		runVerb("update", args)
	},
}
