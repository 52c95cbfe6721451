// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env is the environment variable layer of the configuration. Each variable
// corresponds 1:1 to a persisted config field.
type Env struct {
	AppID        string `envconfig:"PARLEY_APP_ID"`
	AuthoringKey string `envconfig:"PARLEY_AUTHORING_KEY"`
	VersionID    string `envconfig:"PARLEY_VERSION_ID"`
	Endpoint     string `envconfig:"PARLEY_ENDPOINT"`
}

// ReadEnv reads the environment layer.
func ReadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return Env{}, fmt.Errorf("failed to process environment config: %w", err)
	}
	return e, nil
}

// Values holds explicit command-line flag values; a field is empty when the
// corresponding flag was not given.
type Values struct {
	AppID        string
	AuthoringKey string
	VersionID    string
	Endpoint     string
}

// Effective is the merged configuration for one invocation. It is composed
// fresh per command and passed by value; nothing mutates it after composition.
type Effective struct {
	AppID        string
	AuthoringKey string
	VersionID    string
	Endpoint     string
}

// Compose merges the three configuration sources field by field. Highest
// precedence first: command-line flag, persisted config, environment
// variable. Each field resolves independently.
func Compose(flags Values, file File, env Env) Effective {
	return Effective{
		AppID:        firstNonEmpty(flags.AppID, file.AppID, env.AppID),
		AuthoringKey: firstNonEmpty(flags.AuthoringKey, file.AuthoringKey, env.AuthoringKey),
		VersionID:    firstNonEmpty(flags.VersionID, file.VersionID, env.VersionID),
		Endpoint:     firstNonEmpty(flags.Endpoint, file.Endpoint, env.Endpoint),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// MissingError reports a required configuration field that is absent after
// composition.
type MissingError struct {
	Field string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no %s is configured. Run `parley init`, or set it with `parley set %s <value>` or the --%s flag", e.Field, e.Field, e.Field)
}

// Validate enforces the two fields every operation needs before anything is
// dispatched. AppID and VersionID are deliberately not checked here: whether
// they are required depends on the operation and is decided when route
// parameters are resolved.
func (c Effective) Validate() error {
	if c.AuthoringKey == "" {
		return &MissingError{Field: "authoringKey"}
	}
	if c.Endpoint == "" {
		return &MissingError{Field: "endpoint"}
	}
	return nil
}
