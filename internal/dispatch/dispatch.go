// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package dispatch executes authoring API operations over HTTP. One call per
// Execute: route parameters are substituted into the operation's path
// template, the authoring key goes on as a header, and the JSON response is
// decoded. Transport failures and server-reported errors both surface as
// *APIError with the original message preserved.
package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/logger"
	"parley/internal/registry"
	"parley/internal/request"
)

// apiPrefix is the versioned root every operation path hangs off.
const apiPrefix = "/nlu/api/v1.0"

// authHeader carries the authoring key on every request.
const authHeader = "X-Authoring-Key"

// defaultTimeout bounds a single HTTP call. Long-running server work is
// polled between calls, never waited on inside one.
const defaultTimeout = 30 * time.Second

// Client executes operations against one authoring service.
type Client struct {
	HTTPClient *http.Client
}

// New returns a Client with the default timeout.
func New() *Client {
	return &Client{HTTPClient: &http.Client{Timeout: defaultTimeout}}
}

// Execute issues one operation call and returns the decoded JSON result.
func (c *Client) Execute(cfg config.Effective, op *registry.Operation, args request.Args, body request.Body) (any, error) {
	u, err := buildURL(cfg, op, args)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(op.Method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(authHeader, cfg.AuthoringKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debugf("Dispatching %s: %s %s", op.Name, op.Method, u)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	var result any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to parse response: %v", err)}
			}
			// A non-JSON failure body still carries the best message we have.
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
	}

	// The service reports some failures inside a 200 body, so the error
	// field check runs regardless of status.
	if apiErr := errorFromBody(resp.StatusCode, result); apiErr != nil {
		logger.Warnf("Operation %s failed: %s", op.Name, apiErr.Message)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if m, ok := result.(map[string]any); ok {
			if msg, ok := m["message"].(string); ok && msg != "" {
				apiErr.Message = msg
			}
		}
		logger.Warnf("Operation %s failed with status %d: %s", op.Name, resp.StatusCode, apiErr.Message)
		return nil, apiErr
	}

	return result, nil
}

// buildURL joins the configured endpoint, the API prefix, the rendered path,
// and any recognized query parameters present as flags.
func buildURL(cfg config.Effective, op *registry.Operation, args request.Args) (string, error) {
	path, err := renderPath(op.Path, args, cfg)
	if err != nil {
		return "", err
	}

	u := strings.TrimSuffix(cfg.Endpoint, "/") + apiPrefix + path

	q := url.Values{}
	for _, name := range op.Query {
		if v, ok := args.QueryParam(name); ok {
			q.Set(name, v)
		}
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}

// renderPath fills {param} segments from flags first, then effective config.
func renderPath(template string, args request.Args, cfg config.Effective) (string, error) {
	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "{")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest, "}")
		if end < start {
			return "", fmt.Errorf("malformed path template %q", template)
		}

		b.WriteString(rest[:start])
		name := rest[start+1 : end]

		value, ok := args.PathParam(name)
		if !ok {
			value, ok = configParam(cfg, name)
		}
		if !ok || value == "" {
			return "", &PathParamError{Param: name}
		}
		b.WriteString(url.PathEscape(value))

		rest = rest[end+1:]
	}
}

func configParam(cfg config.Effective, name string) (string, bool) {
	switch name {
	case "appId":
		return cfg.AppID, cfg.AppID != ""
	case "versionId":
		return cfg.VersionID, cfg.VersionID != ""
	}
	return "", false
}

// errorFromBody detects an application-level error field in a parsed
// response and converts it, preserving the server's message.
func errorFromBody(status int, result any) *APIError {
	m, ok := result.(map[string]any)
	if !ok {
		return nil
	}
	errField, ok := m["error"]
	if !ok {
		return nil
	}

	apiErr := &APIError{StatusCode: status}
	switch e := errField.(type) {
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := e["code"].(string); ok {
			apiErr.Code = code
		}
	case string:
		apiErr.Message = e
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("the service reported an error (status %d)", status)
	}
	return apiErr
}

// APIError carries a transport failure or a server-reported error.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// PathParamError reports a route parameter with no value from flags or config.
type PathParamError struct {
	Param string
}

func (e *PathParamError) Error() string {
	switch e.Param {
	case "appId", "versionId":
		return fmt.Sprintf("no %s is configured. Pass --%s or set it with `parley set %s <value>`", e.Param, e.Param, e.Param)
	}
	return fmt.Sprintf("missing required --%s", e.Param)
}
