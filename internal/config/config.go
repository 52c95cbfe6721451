// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package config handles tool configuration: the persisted config file, the
// environment variable layer, and the per-invocation merge of both with
// command-line flags into one effective configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File represents the persisted configuration written by `parley init` and
// `parley set`. All fields are optional; precedence against flags and
// environment variables is applied at compose time.
type File struct {
	// AppID is the default application to operate on
	AppID string `yaml:"app_id,omitempty"`

	// AuthoringKey authenticates requests against the authoring API
	AuthoringKey string `yaml:"authoring_key,omitempty"`

	// VersionID is the default application version to operate on
	VersionID string `yaml:"version_id,omitempty"`

	// Endpoint is the base URL of the authoring API, e.g. https://westus.nlu.example.com
	Endpoint string `yaml:"endpoint,omitempty"`
}

// FieldNames lists the settable configuration fields in the spelling the CLI
// accepts, e.g. `parley set appId <value>`.
var FieldNames = []string{"appId", "authoringKey", "versionId", "endpoint"}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "parley", "config.yaml"), nil
}

func Load() (File, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return File{}, err
	}
	return loadFrom(configPath)
}

// loadFrom reads the config file at path. A missing file is not an error; it
// loads as the zero value so first runs work without `parley init`.
func loadFrom(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f File
	err = yaml.Unmarshal(data, &f)
	if err != nil {
		return File{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return f, nil
}

func EnsureConfigDir() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(configPath)
	err = os.MkdirAll(configDir, 0750) // rwxr-x---
	if err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}

func Save(f File) error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}

	err = EnsureConfigDir()
	if err != nil {
		return err
	}

	return saveTo(configPath, f)
}

func saveTo(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// The file holds the authoring key, so keep it rw-r----- (0640).
	err = os.WriteFile(path, data, 0640)
	if err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// SetField assigns a named field on the persisted config. An empty value
// clears the field. Field names match FieldNames, case-insensitively.
func (f *File) SetField(name, value string) error {
	switch strings.ToLower(name) {
	case "appid", "applicationid":
		f.AppID = value
	case "authoringkey":
		f.AuthoringKey = value
	case "versionid":
		f.VersionID = value
	case "endpoint", "endpointbasepath":
		f.Endpoint = value
	default:
		return fmt.Errorf("%s is not a configurable field. Expected one of: %s", name, strings.Join(FieldNames, ", "))
	}
	return nil
}

// Field returns the value of a named field, using the same names SetField accepts.
func (f File) Field(name string) (string, error) {
	switch strings.ToLower(name) {
	case "appid", "applicationid":
		return f.AppID, nil
	case "authoringkey":
		return f.AuthoringKey, nil
	case "versionid":
		return f.VersionID, nil
	case "endpoint", "endpointbasepath":
		return f.Endpoint, nil
	default:
		return "", fmt.Errorf("%s is not a configurable field. Expected one of: %s", name, strings.Join(FieldNames, ", "))
	}
}

// ResolvePath expands a leading ~/ to the user's home directory. Used for
// user-supplied paths such as --in files.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
