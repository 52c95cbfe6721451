// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package registry maps (verb, resource) command tokens to authoring API
// operation descriptors. The catalog is a static table; resolution never
// reflects over types or guesses at near matches.
package registry

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"parley/internal/logger"
)

// Operation describes one authoring API operation: how a command line selects
// it and how the dispatcher must call it.
type Operation struct {
	// Name uniquely identifies the operation, e.g. "TrainVersion".
	Name string

	// Verb is the action token that selects the operation, e.g. "train".
	Verb string

	// Target is the resource path the command names, e.g. ["version"].
	Target []string

	// Method is the HTTP method the operation is issued with.
	Method string

	// Path is the route template; {appId}-style parameters are substituted
	// from flags and effective config at dispatch time.
	Path string

	// EntityName and EntityType are set only when the operation requires a
	// request body. EntityType names the JSON shape an --in file must supply.
	EntityName string
	EntityType string

	// Query lists the flag-backed query parameters the operation accepts.
	Query []string
}

// Verbs is the closed set of action tokens the CLI recognizes. A token
// outside this set is not a valid action no matter the resource.
var Verbs = []string{
	"add", "clone", "delete", "export", "get", "import", "list",
	"publish", "query", "set", "suggest", "train", "update",
}

// Operation names the orchestrator keys operation-specific behavior on.
const (
	NameAddApplication    = "AddApplication"
	NameImportApplication = "ImportApplication"
	NameGetApplication    = "GetApplication"
	NameDeleteApplication = "DeleteApplication"
	NameCloneVersion      = "CloneVersion"
	NameTrainVersion      = "TrainVersion"
	NameGetStatus         = "GetStatus"
)

var operations = []Operation{
	{Name: NameAddApplication, Verb: "add", Target: []string{"application"}, Method: "POST", Path: "/apps", EntityName: "application", EntityType: "ApplicationCreateObject"},
	{Name: NameImportApplication, Verb: "import", Target: []string{"application"}, Method: "POST", Path: "/apps/import", EntityName: "application", EntityType: "ApplicationImportObject"},
	{Name: "ListApplications", Verb: "list", Target: []string{"applications"}, Method: "GET", Path: "/apps", Query: []string{"skip", "take"}},
	{Name: NameGetApplication, Verb: "get", Target: []string{"application"}, Method: "GET", Path: "/apps/{appId}"},
	{Name: "UpdateApplication", Verb: "update", Target: []string{"application"}, Method: "PUT", Path: "/apps/{appId}", EntityName: "application", EntityType: "ApplicationUpdateObject"},
	{Name: NameDeleteApplication, Verb: "delete", Target: []string{"application"}, Method: "DELETE", Path: "/apps/{appId}"},

	{Name: "PublishVersion", Verb: "publish", Target: []string{"version"}, Method: "POST", Path: "/apps/{appId}/publish", EntityName: "publish", EntityType: "ApplicationPublishObject"},
	{Name: "ListVersions", Verb: "list", Target: []string{"versions"}, Method: "GET", Path: "/apps/{appId}/versions", Query: []string{"skip", "take"}},
	{Name: "GetVersion", Verb: "get", Target: []string{"version"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}"},
	{Name: "DeleteVersion", Verb: "delete", Target: []string{"version"}, Method: "DELETE", Path: "/apps/{appId}/versions/{versionId}"},
	{Name: NameCloneVersion, Verb: "clone", Target: []string{"version"}, Method: "POST", Path: "/apps/{appId}/versions/{versionId}/clone", EntityName: "version", EntityType: "VersionCloneObject"},
	{Name: "ImportVersion", Verb: "import", Target: []string{"version"}, Method: "POST", Path: "/apps/{appId}/versions/import", EntityName: "version", EntityType: "VersionImportObject"},
	{Name: "ExportVersion", Verb: "export", Target: []string{"version"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/export"},
	{Name: NameTrainVersion, Verb: "train", Target: []string{"version"}, Method: "POST", Path: "/apps/{appId}/versions/{versionId}/train"},
	{Name: NameGetStatus, Verb: "get", Target: []string{"status"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/train"},

	{Name: "AddIntent", Verb: "add", Target: []string{"intent"}, Method: "POST", Path: "/apps/{appId}/versions/{versionId}/intents", EntityName: "intent", EntityType: "IntentCreateObject"},
	{Name: "ListIntents", Verb: "list", Target: []string{"intents"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/intents", Query: []string{"skip", "take"}},
	{Name: "DeleteIntent", Verb: "delete", Target: []string{"intent"}, Method: "DELETE", Path: "/apps/{appId}/versions/{versionId}/intents/{id}"},
	{Name: "AddEntity", Verb: "add", Target: []string{"entity"}, Method: "POST", Path: "/apps/{appId}/versions/{versionId}/entities", EntityName: "entity", EntityType: "EntityCreateObject"},
	{Name: "ListEntities", Verb: "list", Target: []string{"entities"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/entities", Query: []string{"skip", "take"}},
	{Name: "DeleteEntity", Verb: "delete", Target: []string{"entity"}, Method: "DELETE", Path: "/apps/{appId}/versions/{versionId}/entities/{id}"},

	{Name: "AddUtterance", Verb: "add", Target: []string{"utterance"}, Method: "POST", Path: "/apps/{appId}/versions/{versionId}/examples", EntityName: "utterance", EntityType: "UtteranceLabelObject"},
	{Name: "ListUtterances", Verb: "list", Target: []string{"utterances"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/examples", Query: []string{"skip", "take"}},
	{Name: "SuggestUtterances", Verb: "suggest", Target: []string{"utterances"}, Method: "GET", Path: "/apps/{appId}/versions/{versionId}/suggest", Query: []string{"take"}},

	{Name: "QueryPrediction", Verb: "query", Target: []string{"prediction"}, Method: "GET", Path: "/apps/{appId}/predict", Query: []string{"q"}},
}

// catalog is keyed by the composite (verb, resource-path) identity.
var catalog = make(map[string]*Operation, len(operations))

func init() {
	for i := range operations {
		op := &operations[i]
		catalog[key(op.Verb, op.Target)] = op
	}
}

func key(verb string, target []string) string {
	return verb + " " + strings.Join(target, "/")
}

// Resolve finds the operation selected by a verb and its resource tokens.
// The failure branches are distinct and checked in order: unknown verb,
// recognized verb with an unrecognized resource, recognized verb with no
// resource at all.
func Resolve(verb string, resources []string) (*Operation, error) {
	if !KnownVerb(verb) {
		return nil, &UnknownVerbError{Verb: verb}
	}
	if op, ok := catalog[key(verb, resources)]; ok {
		logger.Debugf("Resolved '%s %s' to operation %s", verb, strings.Join(resources, " "), op.Name)
		return op, nil
	}
	if len(resources) > 0 {
		return nil, &UnknownResourceError{Verb: verb, Resource: strings.Join(resources, " ")}
	}
	return nil, &MissingResourceError{Verb: verb}
}

// KnownVerb reports whether verb is in the recognized action set.
func KnownVerb(verb string) bool {
	return slices.Contains(Verbs, verb)
}

// ResourcesFor lists the resource paths a verb accepts, sorted. Used for
// shell completion and the missing-resource message.
func ResourcesFor(verb string) []string {
	var out []string
	for i := range operations {
		if operations[i].Verb == verb {
			out = append(out, strings.Join(operations[i].Target, " "))
		}
	}
	sort.Strings(out)
	return out
}

// UnknownVerbError reports an action token outside the recognized verb set.
type UnknownVerbError struct {
	Verb string
}

func (e *UnknownVerbError) Error() string {
	return fmt.Sprintf("%s is not a valid action", e.Verb)
}

// UnknownResourceError reports a resource no operation of the verb accepts.
type UnknownResourceError struct {
	Verb     string
	Resource string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("%s is not a valid resource", e.Resource)
}

// MissingResourceError reports a recognized verb issued with no resource token.
type MissingResourceError struct {
	Verb string
}

func (e *MissingResourceError) Error() string {
	targets := ResourcesFor(e.Verb)
	if len(targets) == 0 {
		return fmt.Sprintf("missing resource for %s", e.Verb)
	}
	return fmt.Sprintf("missing resource for %s. Expected one of: %s", e.Verb, strings.Join(targets, ", "))
}
