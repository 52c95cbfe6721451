// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package api implements the local HTTP bridge behind `parley serve`. It
// exposes a small JSON surface over the authoring API so editors and build
// tooling can read application state and trigger training without shelling
// out to the CLI. Each request drives exactly one upstream dispatch.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/dispatch"
	"parley/internal/engine"
	"parley/internal/logger"
	"parley/internal/registry"
	"parley/internal/request"
	"parley/internal/training"
	"parley/internal/version"

	"github.com/gorilla/mux"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentUpstream bounds how many authoring API calls the bridge keeps
// in flight at once. The authoring service rate-limits aggressively, so the
// bridge queues rather than fan out.
const maxConcurrentUpstream = 4

// Bridge mediates between the local JSON routes and the authoring API. It
// holds the effective config resolved at serve startup; per-request overrides
// come only from the URL path.
type Bridge struct {
	cfg    config.Effective
	client engine.Dispatcher
	sem    *semaphore.Weighted

	// interval overrides the poll cadence of the train stream. Zero means
	// the poller's default.
	interval time.Duration
}

// NewBridge returns a Bridge dispatching through client with cfg as the
// baseline configuration.
func NewBridge(cfg config.Effective, client engine.Dispatcher) *Bridge {
	return &Bridge{
		cfg:    cfg,
		client: client,
		sem:    semaphore.NewWeighted(maxConcurrentUpstream),
	}
}

// Register attaches the bridge routes to router.
func (b *Bridge) Register(router *mux.Router) {
	router.HandleFunc("/api/apps", b.listApplicationsHandler).Methods("GET")
	router.HandleFunc("/api/apps/{appId}", b.getApplicationHandler).Methods("GET")
	router.HandleFunc("/api/apps/{appId}/versions", b.listVersionsHandler).Methods("GET")
	router.HandleFunc("/api/apps/{appId}/versions/{versionId}/train", b.trainHandler).Methods("POST")
	router.HandleFunc("/api/apps/{appId}/versions/{versionId}/train/stream", b.streamTrainHandler).Methods("GET")
	router.HandleFunc("/api/apps/{appId}/versions/{versionId}/status", b.statusHandler).Methods("GET")
	router.HandleFunc("/api/apps/{appId}/publish", b.publishHandler).Methods("POST")
}

// writeJSONResponse writes a JSON response with CORS headers so local web
// tooling on another port can call the bridge directly.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Failed to encode bridge response: %v", err)
	}
}

// writeError maps dispatch failures onto HTTP statuses: bad path parameters
// are the caller's fault, upstream rejections surface as a bad gateway, and
// anything else is internal.
func writeError(w http.ResponseWriter, err error) {
	var pathErr *dispatch.PathParamError
	var apiErr *dispatch.APIError
	switch {
	case errors.As(err, &pathErr):
		http.Error(w, pathErr.Error(), http.StatusBadRequest)
	case errors.As(err, &apiErr):
		http.Error(w, apiErr.Error(), http.StatusBadGateway)
	default:
		http.Error(w, fmt.Sprintf("Error calling authoring API: %v", err), http.StatusInternalServerError)
	}
}

// dispatch resolves one operation and executes it under the concurrency
// guard. A nil body is valid for body-less operations.
func (b *Bridge) dispatch(r *http.Request, verb string, resources []string, args request.Args, body request.Body) (any, error) {
	op, err := registry.Resolve(verb, resources)
	if err != nil {
		return nil, err
	}
	return b.execute(r, op, args, body)
}

// execute runs one resolved operation holding an upstream slot for the
// duration of the call. Long-lived streams acquire per poll round, not for
// the whole stream.
func (b *Bridge) execute(r *http.Request, op *registry.Operation, args request.Args, body request.Body) (any, error) {
	if err := b.sem.Acquire(r.Context(), 1); err != nil {
		return nil, fmt.Errorf("failed to acquire upstream slot: %w", err)
	}
	defer b.sem.Release(1)

	logger.Debugf("Bridge dispatching %s for %s", op.Name, r.URL.Path)
	return b.client.Execute(b.cfg, op, args, body)
}

// pathArgs lifts the mux path parameters into dispatch arguments.
func pathArgs(r *http.Request) request.Args {
	vars := mux.Vars(r)
	return request.Args{
		AppID:     vars["appId"],
		VersionID: vars["versionId"],
	}
}

// listApplicationsHandler serves GET /api/apps, returning every application
// the authoring key can see.
//
// Response:
// - 200 OK: JSON array of application objects
// - 502 Bad Gateway: the authoring API rejected the call
func (b *Bridge) listApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := b.dispatch(r, "list", []string{"applications"}, request.Args{}, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, result)
}

// getApplicationHandler serves GET /api/apps/{appId}, returning one
// application object.
func (b *Bridge) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	result, err := b.dispatch(r, "get", []string{"application"}, pathArgs(r), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, result)
}

// listVersionsHandler serves GET /api/apps/{appId}/versions. The authoring
// API returns versions in creation order; the bridge re-sorts them by semantic
// version so clients can treat the last element as the newest.
//
// Response:
// - 200 OK: JSON array of version objects, ascending by version
// - 502 Bad Gateway: the authoring API rejected the call
func (b *Bridge) listVersionsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := b.dispatch(r, "list", []string{"versions"}, pathArgs(r), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	sortVersions(result)
	writeJSONResponse(w, result)
}

// sortVersions orders a version listing ascending by its "version" field.
// Anything that is not a list of objects is left untouched.
func sortVersions(result any) {
	list, ok := result.([]any)
	if !ok {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return version.Compare(versionField(list[i]), versionField(list[j])) < 0
	})
}

func versionField(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["version"].(string)
	return s
}

// trainHandler serves POST /api/apps/{appId}/versions/{versionId}/train,
// kicking off a training run. It returns the enqueue result immediately; the
// client is expected to poll the status route.
func (b *Bridge) trainHandler(w http.ResponseWriter, r *http.Request) {
	result, err := b.dispatch(r, "train", []string{"version"}, pathArgs(r), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, result)
}

// streamTrainHandler serves GET /api/apps/{appId}/versions/{versionId}/train/stream,
// which kicks off a training run and streams polling progress using
// Server-Sent Events until every model finishes.
//
// Events:
// - queued: the enqueue result, as JSON
// - progress: "<trained>/<total> models trained", once per poll round
// - error: the failure if training or a status call fails
// - done: the final per-model report, as JSON
//
// Response:
// - 200 OK with text/event-stream content type for successful connections
// - 500 Internal Server Error if streaming is unsupported or the kick fails
func (b *Bridge) streamTrainHandler(w http.ResponseWriter, r *http.Request) {
	// Set headers for Server-Sent Events
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	args := pathArgs(r)

	kick, err := b.dispatch(r, "train", []string{"version"}, args, nil)
	if err != nil {
		writeSSEEvent(w, flusher, "error", err.Error())
		return
	}
	writeSSEEvent(w, flusher, "queued", encodeSSEData(kick))

	statusOp, err := registry.Resolve("get", []string{"status"})
	if err != nil {
		writeSSEEvent(w, flusher, "error", err.Error())
		return
	}

	poller := &training.Poller{
		Interval: b.interval,
		Progress: &sseProgressWriter{w: w, flusher: flusher},
		Status: func() (training.Report, error) {
			raw, err := b.execute(r, statusOp, args, nil)
			if err != nil {
				return nil, err
			}
			return training.ParseReport(raw)
		},
	}

	report, err := poller.Wait()
	if err != nil {
		writeSSEEvent(w, flusher, "error", err.Error())
		return
	}
	writeSSEEvent(w, flusher, "done", encodeSSEData(report))
}

// sseProgressWriter turns the poller's per-round progress lines into SSE
// progress events.
type sseProgressWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseProgressWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), " \t\r\n")
	if line != "" {
		writeSSEEvent(s.w, s.flusher, "progress", line)
	}
	return len(p), nil
}

func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	// Newlines would break SSE framing.
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, strings.ReplaceAll(data, "\n", "\\n"))
	flusher.Flush()
}

func encodeSSEData(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

// statusHandler serves GET /api/apps/{appId}/versions/{versionId}/status,
// returning the per-model training report for a version.
func (b *Bridge) statusHandler(w http.ResponseWriter, r *http.Request) {
	result, err := b.dispatch(r, "get", []string{"status"}, pathArgs(r), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, result)
}

// publishHandler serves POST /api/apps/{appId}/publish. The request body is
// forwarded verbatim as the publish object.
//
// Request Body (JSON):
// - versionId: the version to publish
// - isStaging: publish to the staging slot instead of production (optional)
// - region: target region (optional)
//
// Response:
// - 200 OK: the publish result from the authoring API
// - 400 Bad Request: missing or malformed request body
// - 502 Bad Gateway: the authoring API rejected the call
func (b *Bridge) publishHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(raw) == 0 {
		http.Error(w, "Request body required", http.StatusBadRequest)
		return
	}

	var body request.Body
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := b.dispatch(r, "publish", []string{"version"}, pathArgs(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, result)
}
