// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/config"
	"parley/internal/dispatch"
	"parley/internal/logger"
	"parley/internal/registry"
	"parley/internal/request"
)

func TestMain(m *testing.M) {
	logger.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type recordedCall struct {
	op   *registry.Operation
	args request.Args
	body request.Body
}

type fakeDispatcher struct {
	calls   []recordedCall
	handler func(op *registry.Operation, args request.Args, body request.Body) (any, error)
}

func (f *fakeDispatcher) Execute(cfg config.Effective, op *registry.Operation, args request.Args, body request.Body) (any, error) {
	f.calls = append(f.calls, recordedCall{op: op, args: args, body: body})
	return f.handler(op, args, body)
}

func newTestServer(t *testing.T, f *fakeDispatcher) *httptest.Server {
	t.Helper()
	cfg := config.Effective{
		AuthoringKey: "key-1",
		Endpoint:     "https://westus.nlu.example.com",
	}
	router := mux.NewRouter()
	NewBridge(cfg, f).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestListApplications(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return []any{map[string]any{"id": "app-1", "name": "TravelAgent"}}, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var apps []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "TravelAgent", apps[0]["name"])

	require.Len(t, f.calls, 1)
	assert.Equal(t, "ListApplications", f.calls[0].op.Name)
}

func TestGetApplicationUsesPathParameter(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return map[string]any{"id": args.AppID}, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.calls, 1)
	assert.Equal(t, registry.NameGetApplication, f.calls[0].op.Name)
	assert.Equal(t, "app-42", f.calls[0].args.AppID)
}

func TestListVersionsSortsSemantically(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		// Creation order from upstream; "0.10" sorts before "0.2" as a
		// plain string but after it as a version.
		return []any{
			map[string]any{"version": "0.10"},
			map[string]any{"version": "0.2"},
			map[string]any{"version": "0.1"},
		}, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var versions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&versions))
	require.Len(t, versions, 3)
	assert.Equal(t, "0.1", versions[0]["version"])
	assert.Equal(t, "0.2", versions[1]["version"])
	assert.Equal(t, "0.10", versions[2]["version"])
}

func TestTrainRoute(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return map[string]any{"statusId": float64(1), "status": "Queued"}, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Post(srv.URL+"/api/apps/app-1/versions/0.2/train", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.calls, 1)
	assert.Equal(t, registry.NameTrainVersion, f.calls[0].op.Name)
	assert.Equal(t, "app-1", f.calls[0].args.AppID)
	assert.Equal(t, "0.2", f.calls[0].args.VersionID)
	assert.Nil(t, f.calls[0].body)
}

func TestStatusRoute(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return []any{map[string]any{"modelId": "m1", "details": map[string]any{"status": "Success"}}}, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions/0.2/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.calls, 1)
	assert.Equal(t, registry.NameGetStatus, f.calls[0].op.Name)
}

func TestPublishForwardsBody(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return map[string]any{"endpointUrl": "https://westus.nlu.example.com/apps/app-1"}, nil
	}}
	srv := newTestServer(t, f)

	payload := `{"versionId": "0.2", "isStaging": true, "region": "westus"}`
	resp, err := http.Post(srv.URL+"/api/apps/app-1/publish", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "PublishVersion", f.calls[0].op.Name)
	assert.Equal(t, request.Body{
		"versionId": "0.2",
		"isStaging": true,
		"region":    "westus",
	}, f.calls[0].body)
}

func TestPublishRejectsEmptyBody(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Post(srv.URL+"/api/apps/app-1/publish", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.calls, "a rejected body must not reach the authoring API")
}

func TestPublishRejectsMalformedBody(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Post(srv.URL+"/api/apps/app-1/publish", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.calls)
}

func TestUpstreamRejectionMapsToBadGateway(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, &dispatch.APIError{StatusCode: 401, Code: "Unauthorized", Message: "bad key"}
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	msg, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(msg), "bad key")
}

func TestMissingPathParamMapsToBadRequest(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, &dispatch.PathParamError{Param: "versionId"}
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, nil
	}}
	srv := newTestServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions/0.2/train")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Empty(t, f.calls)
}

// newStreamServer shortens the poll interval so stream tests finish quickly.
func newStreamServer(t *testing.T, f *fakeDispatcher) *httptest.Server {
	t.Helper()
	cfg := config.Effective{
		AuthoringKey: "key-1",
		Endpoint:     "https://westus.nlu.example.com",
	}
	b := NewBridge(cfg, f)
	b.interval = time.Millisecond
	router := mux.NewRouter()
	b.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func modelStatus(id, status string) map[string]any {
	return map[string]any{
		"modelId": id,
		"details": map[string]any{"name": "BookFlight", "status": status},
	}
}

func TestTrainStreamEmitsLifecycleEvents(t *testing.T) {
	rounds := [][]any{
		{modelStatus("m1", "InProgress")},
		{modelStatus("m1", "Success")},
	}
	round := 0
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		switch op.Name {
		case registry.NameTrainVersion:
			return map[string]any{"statusId": float64(2)}, nil
		case registry.NameGetStatus:
			report := rounds[round]
			if round < len(rounds)-1 {
				round++
			}
			return report, nil
		}
		return nil, errors.New("unexpected operation " + op.Name)
	}}
	srv := newStreamServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions/0.2/train/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)

	assert.Contains(t, stream, "event: queued\n")
	assert.Contains(t, stream, "event: progress\ndata: 0/1 models trained\n")
	assert.Contains(t, stream, "event: progress\ndata: 1/1 models trained\n")
	assert.Contains(t, stream, "event: done\n")
	assert.Contains(t, stream, `"status":"Success"`)

	require.NotEmpty(t, f.calls)
	assert.Equal(t, registry.NameTrainVersion, f.calls[0].op.Name)
	assert.Equal(t, "app-1", f.calls[0].args.AppID)
	assert.Equal(t, "0.2", f.calls[0].args.VersionID)
	for _, call := range f.calls[1:] {
		assert.Equal(t, registry.NameGetStatus, call.op.Name)
	}
}

func TestTrainStreamReportsTrainingFailure(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		switch op.Name {
		case registry.NameTrainVersion:
			return map[string]any{"statusId": float64(2)}, nil
		case registry.NameGetStatus:
			return []any{map[string]any{
				"modelId": "m9",
				"details": map[string]any{"status": "Fail", "failureReason": "not enough labels"},
			}}, nil
		}
		return nil, errors.New("unexpected operation " + op.Name)
	}}
	srv := newStreamServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions/0.2/train/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)

	assert.Contains(t, stream, "event: queued\n")
	assert.Contains(t, stream, "event: error\n")
	assert.Contains(t, stream, "m9")
	assert.Contains(t, stream, "not enough labels")
	assert.NotContains(t, stream, "event: done\n")
}

func TestTrainStreamSurfacesKickoffFailure(t *testing.T) {
	f := &fakeDispatcher{handler: func(op *registry.Operation, args request.Args, body request.Body) (any, error) {
		return nil, &dispatch.APIError{StatusCode: 429, Code: "TooManyRequests", Message: "quota exceeded"}
	}}
	srv := newStreamServer(t, f)

	resp, err := http.Get(srv.URL + "/api/apps/app-1/versions/0.2/train/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)

	assert.Contains(t, stream, "event: error\n")
	assert.Contains(t, stream, "quota exceeded")
	assert.NotContains(t, stream, "event: queued\n")
}
