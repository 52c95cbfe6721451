// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package cli

import (
	"errors"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"parley/internal/config"
	"parley/internal/dispatch"
	"parley/internal/engine"
	"parley/internal/logger"
	"parley/internal/request"
)

// runVerb composes the effective configuration and hands one command to the
// engine. Every verb command funnels through here; it does not return on
// failure.
func runVerb(verb string, resources []string) {
	cfg, err := composeEffective()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := argsFromFlags()

	eng := &engine.Engine{
		Config: cfg,
		Client: dispatch.New(),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}

	// The spinner stays off whenever something else owns stderr: the delete
	// confirmation prompt, or per-round progress lines under --wait.
	confirms := verb == "delete" && len(resources) == 1 && resources[0] == "application" && !args.Quiet
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Color("cyan")
	s.Suffix = " Calling authoring API..."
	if !confirms && !args.Wait {
		s.Start()
	}

	err = eng.Run(verb, resources, args)
	s.Stop()

	if err != nil {
		if errors.Is(err, engine.ErrAborted) {
			errorColor.Fprintln(os.Stderr, "Operation canceled.")
			os.Exit(1)
		}
		logger.Errorf("Command failed: %v", err)
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// composeEffective merges the three configuration layers for this invocation.
func composeEffective() (config.Effective, error) {
	file, err := config.Load()
	if err != nil {
		return config.Effective{}, err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return config.Effective{}, err
	}
	flags := config.Values{
		AppID:        flagAppID,
		AuthoringKey: flagAuthoringKey,
		VersionID:    flagVersionID,
		Endpoint:     flagEndpoint,
	}
	return config.Compose(flags, file, env), nil
}

// argsFromFlags lifts the parsed universal flags into dispatch arguments.
func argsFromFlags() request.Args {
	in := flagIn
	if resolved, err := config.ResolvePath(in); err == nil {
		in = resolved
	}
	return request.Args{
		In:              in,
		Wait:            flagWait,
		Staging:         flagStaging,
		Region:          flagRegion,
		AppID:           flagAppID,
		VersionID:       flagVersionID,
		ID:              flagID,
		TargetVersionID: flagTargetVersionID,
		Quiet:           flagQuiet,
		Interop:         flagInterop,
		Skip:            flagSkip,
		Take:            flagTake,
		Q:               flagQuery,
	}
}
