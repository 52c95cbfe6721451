// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package request validates command arguments against an operation descriptor
// and produces the request body the dispatcher sends. It is a syntactic gate:
// field-level validation of body contents is the server's job.
package request

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"parley/internal/registry"
)

// Args carries the universal command-line flag values for one invocation.
// Empty strings and false booleans mean the flag was not given.
type Args struct {
	// In is the path of a JSON file supplying the request body.
	In string

	// Wait enables polling after train-initiation and status commands.
	Wait bool

	// Staging publishes to the staging slot instead of production.
	Staging bool

	// Region selects the publish region.
	Region string

	// AppID and VersionID override the configured application and version.
	AppID     string
	VersionID string

	// ID addresses a sub-resource such as an intent or an entity.
	ID string

	// TargetVersionID names the version a clone should create.
	TargetVersionID string

	// Quiet suppresses the delete confirmation prompt.
	Quiet bool

	// Interop reshapes application output into the connector descriptor.
	Interop bool

	// Skip and Take page list operations; Q is the prediction text.
	Skip string
	Take string
	Q    string
}

// PathParam returns the flag value that fills a {name} route parameter.
func (a Args) PathParam(name string) (string, bool) {
	switch name {
	case "appId":
		return a.AppID, a.AppID != ""
	case "versionId":
		return a.VersionID, a.VersionID != ""
	case "id":
		return a.ID, a.ID != ""
	}
	return "", false
}

// QueryParam returns the flag value backing a named query parameter.
func (a Args) QueryParam(name string) (string, bool) {
	switch name {
	case "skip":
		return a.Skip, a.Skip != ""
	case "take":
		return a.Take, a.Take != ""
	case "q":
		return a.Q, a.Q != ""
	}
	return "", false
}

// Body is an operation-specific JSON payload. A nil Body means the operation
// sends none.
type Body map[string]any

// synthKey identifies a synthesis rule by the operation's resource target and verb.
type synthKey struct {
	target string
	verb   string
}

// synthesizers builds bodies from flags for the operations that support it.
// Rules are additive: a new (target, verb) entry here is the whole change.
var synthesizers = map[synthKey]func(Args) Body{
	{target: "version", verb: "publish"}: func(a Args) Body {
		return Body{
			"versionId": a.VersionID,
			"isStaging": a.Staging,
			"region":    a.Region,
		}
	},
	{target: "version", verb: "clone"}: func(a Args) Body {
		return Body{
			"version": a.TargetVersionID,
		}
	},
}

// Build produces the request body for an operation, or nil when it takes
// none. An --in file wins over synthesis; its read and parse failures
// propagate untouched so the user sees the library's own diagnostic.
func Build(op *registry.Operation, args Args) (Body, error) {
	if op.EntityName == "" {
		return nil, nil
	}

	if args.In != "" {
		data, err := os.ReadFile(args.In)
		if err != nil {
			return nil, err
		}
		var body Body
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, err
		}
		return body, nil
	}

	if synth, ok := synthesizers[synthKey{target: strings.Join(op.Target, "/"), verb: op.Verb}]; ok {
		return synth(args), nil
	}

	return nil, &MissingBodyError{EntityType: op.EntityType}
}

// MissingBodyError reports a body-requiring operation invoked without --in
// when no synthesis rule covers it.
type MissingBodyError struct {
	EntityType string
}

func (e *MissingBodyError) Error() string {
	return fmt.Sprintf("The --in requires an input of type: %s", e.EntityType)
}
