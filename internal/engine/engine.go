// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package engine orchestrates one command invocation: validate the effective
// config, resolve the operation, build and dispatch the request, then apply
// the operation-specific output shaping (creation follow-up, training wait,
// interop reshape, pretty-printed JSON).
package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/logger"
	"parley/internal/registry"
	"parley/internal/request"
	"parley/internal/training"
	"parley/internal/version"
)

// ErrAborted reports a destructive action declined at the confirmation prompt.
var ErrAborted = errors.New("operation canceled")

// Dispatcher executes one resolved operation. Satisfied by *dispatch.Client.
type Dispatcher interface {
	Execute(cfg config.Effective, op *registry.Operation, args request.Args, body request.Body) (any, error)
}

// Engine runs one command against one composed configuration.
type Engine struct {
	// Config is the effective configuration for this invocation.
	Config config.Effective

	// Client dispatches operations.
	Client Dispatcher

	// In supplies confirmation answers; Out receives the JSON result; Err
	// receives prompts and training progress.
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interval overrides the training poll cadence; zero keeps the default.
	Interval time.Duration
}

// Run resolves and executes one command.
func (e *Engine) Run(verb string, resources []string, args request.Args) error {
	if err := e.Config.Validate(); err != nil {
		return err
	}

	op, err := registry.Resolve(verb, resources)
	if err != nil {
		return err
	}

	return e.run(op, args)
}

func (e *Engine) run(op *registry.Operation, args request.Args) error {
	if op.Name == registry.NameDeleteApplication && !args.Quiet {
		if err := e.confirmDelete(args); err != nil {
			return err
		}
	}

	if op.Name == registry.NameCloneVersion {
		if err := e.fillCloneTarget(&args); err != nil {
			return err
		}
	}

	body, err := request.Build(op, args)
	if err != nil {
		return err
	}

	result, err := e.Client.Execute(e.Config, op, args, body)
	if err != nil {
		return err
	}

	// A successful create or import answers with the new application's id;
	// chase it so the user sees the full application, not a bare id.
	if op.Name == registry.NameAddApplication || op.Name == registry.NameImportApplication {
		result, err = e.followUpGet(result, args)
		if err != nil {
			return err
		}
	}

	if args.Wait && (op.Name == registry.NameTrainVersion || op.Name == registry.NameGetStatus) {
		report, err := e.waitForTraining(args)
		if err != nil {
			return err
		}
		result = report
	}

	if args.Interop {
		if shaped, ok := interopDescriptor(result, body, e.Config); ok {
			result = shaped
		}
	}

	return e.print(result)
}

// confirmDelete fetches the application about to be removed, shows its name
// and id, and asks. Only an answer starting with "y" proceeds; everything
// else, including an empty answer, aborts before any delete is issued.
func (e *Engine) confirmDelete(args request.Args) error {
	getOp, err := registry.Resolve("get", []string{"application"})
	if err != nil {
		return err
	}

	result, err := e.Client.Execute(e.Config, getOp, args, nil)
	if err != nil {
		return err
	}

	name, id := applicationIdentity(result, args, e.Config)
	fmt.Fprintf(e.Err, "Deleting application %s (%s)\n", name, id)
	fmt.Fprint(e.Err, "Are you sure? (y/N): ")

	answer, readErr := bufio.NewReader(e.In).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if readErr != nil && answer == "" {
		// No input at all (e.g. closed stdin) counts as declining.
		return ErrAborted
	}
	if !strings.HasPrefix(answer, "y") {
		return ErrAborted
	}

	logger.Infof("Delete of application %s confirmed", id)
	return nil
}

// applicationIdentity pulls the display name and id out of a get-application
// result, falling back to the flag and configured ids.
func applicationIdentity(result any, args request.Args, cfg config.Effective) (name, id string) {
	id = args.AppID
	if id == "" {
		id = cfg.AppID
	}
	name = "unknown"
	if m, ok := result.(map[string]any); ok {
		if v, ok := m["name"].(string); ok && v != "" {
			name = v
		}
		if v, ok := m["id"].(string); ok && v != "" {
			id = v
		}
	}
	return name, id
}

// fillCloneTarget defaults the clone target to the next minor of the source
// version when neither --in nor --targetVersionId was given.
func (e *Engine) fillCloneTarget(args *request.Args) error {
	if args.In != "" || args.TargetVersionID != "" {
		return nil
	}
	source := args.VersionID
	if source == "" {
		source = e.Config.VersionID
	}
	if source == "" {
		// Path resolution reports the missing versionId with its usual message.
		return nil
	}

	next, err := version.Next(source)
	if err != nil {
		return err
	}
	logger.Infof("No target version given; cloning %s to %s", source, next)
	args.TargetVersionID = next
	return nil
}

// followUpGet chases a creation result with a get on the new application.
func (e *Engine) followUpGet(result any, args request.Args) (any, error) {
	id, ok := createdID(result)
	if !ok {
		return result, nil
	}

	getOp, err := registry.Resolve("get", []string{"application"})
	if err != nil {
		return nil, err
	}

	followArgs := args
	followArgs.AppID = id
	return e.Client.Execute(e.Config, getOp, followArgs, nil)
}

// createdID extracts the application id a creation call answered with. The
// service returns it as a bare JSON string; tolerate an object with an id.
func createdID(result any) (string, bool) {
	switch v := result.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		if id, ok := v["id"].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// waitForTraining polls the status operation until a terminal state and
// returns the final report.
func (e *Engine) waitForTraining(args request.Args) (training.Report, error) {
	statusOp, err := registry.Resolve("get", []string{"status"})
	if err != nil {
		return nil, err
	}

	poller := &training.Poller{
		Interval: e.Interval,
		Progress: e.Err,
		Status: func() (training.Report, error) {
			result, err := e.Client.Execute(e.Config, statusOp, args, nil)
			if err != nil {
				return nil, err
			}
			return training.ParseReport(result)
		},
	}
	return poller.Wait()
}

// interopDescriptor reshapes an application result into the fixed connector
// shape toolchains consume. A freshly created application has no active
// version yet, so the version falls back to the creation request's initial
// version, then to the configured one.
func interopDescriptor(result any, body request.Body, cfg config.Effective) (map[string]any, bool) {
	m, ok := result.(map[string]any)
	if !ok {
		return nil, false
	}
	id, _ := m["id"].(string)
	name, _ := m["name"].(string)
	if id == "" || name == "" {
		return nil, false
	}

	ver, _ := m["activeVersion"].(string)
	if ver == "" && body != nil {
		if v, ok := body["initialVersionId"].(string); ok {
			ver = v
		}
	}
	if ver == "" {
		ver = cfg.VersionID
	}

	return map[string]any{
		"type":            "nlu",
		"name":            name,
		"id":              id,
		"appId":           id,
		"authoringKey":    cfg.AuthoringKey,
		"subscriptionKey": cfg.AuthoringKey,
		"version":         ver,
	}, true
}

// print writes the final result as pretty JSON. Operations that answer with
// an empty body produce no output beyond the exit status.
func (e *Engine) print(result any) error {
	if result == nil {
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(e.Out, string(data))
	return nil
}
