// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/service"
	"github.com/MKhiriev/emotion-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine is a hand-written SyncEngine for handler tests.
type fakeEngine struct {
	mu sync.Mutex

	state       models.SyncState
	forceResult bool
	forceCalls  []bool
	deadLetters []models.DeadLetter
	deadErr     error
	resolveErr  error
	resolved    map[string]models.Resolution
	states      chan models.SyncState
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		state:    models.SyncState{Status: models.StatusIdle, Connectivity: models.ConnectivityOnline},
		resolved: make(map[string]models.Resolution),
		states:   make(chan models.SyncState, 8),
	}
}

func (e *fakeEngine) Start(context.Context) {}
func (e *fakeEngine) Stop()                  {}

func (e *fakeEngine) Subscribe() (<-chan models.SyncState, func()) {
	return e.states, func() {}
}

func (e *fakeEngine) CurrentState() models.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *fakeEngine) ForceSync(_ context.Context, showConflicts bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forceCalls = append(e.forceCalls, showConflicts)
	return e.forceResult
}

func (e *fakeEngine) QueueForSync(context.Context, models.EntityType, string, models.Payload, models.Operation) {
}

func (e *fakeEngine) DrainQueue(context.Context) bool { return true }

func (e *fakeEngine) ResolveConflict(_ context.Context, id string, r models.Resolution) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolveErr != nil {
		return e.resolveErr
	}
	e.resolved[id] = r
	return nil
}

func (e *fakeEngine) DeadLetters(context.Context) ([]models.DeadLetter, error) {
	return e.deadLetters, e.deadErr
}

func newTestHandler(engine service.SyncEngine, token string) *Handler {
	return &Handler{engine: engine, token: token, logger: logger.Nop()}
}

func serve(h *Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)
	return rr
}

// ── NewHandler ───────────────────────────────────────────────────────────────

func TestNewHandler(t *testing.T) {
	engine := newFakeEngine()
	h := NewHandler(&service.ClientServices{SyncEngine: engine}, config.ClientServer{Token: "secret"}, logger.Nop())

	require.NotNil(t, h)
	assert.Equal(t, engine, h.engine)
	assert.Equal(t, "secret", h.token)
}

// ── Init ─────────────────────────────────────────────────────────────────────

func TestInit_Routes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/sync/state", "", http.StatusOK},
		{http.MethodGet, "/api/sync/dead-letters", "", http.StatusOK},
		{http.MethodPost, "/api/sync/force", "", http.StatusOK},
		{http.MethodPost, "/api/sync/conflicts/c1/resolve", `{"kind":"dismiss"}`, http.StatusOK},

		{http.MethodPost, "/api/sync/state", "", http.StatusNotFound},
		{http.MethodDelete, "/api/sync/dead-letters", "", http.StatusNotFound},
		{http.MethodGet, "/api/sync/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := serve(newTestHandler(newFakeEngine(), ""), tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestInit_SetsTraceID(t *testing.T) {
	rr := serve(newTestHandler(newFakeEngine(), ""), http.MethodGet, "/api/sync/state", "", http.Header{
		traceIDHeader: []string{"trace-1"},
	})

	assert.Equal(t, "trace-1", rr.Header().Get(traceIDHeader))
}

// ── auth ─────────────────────────────────────────────────────────────────────

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "no token configured", want: http.StatusOK},
		{name: "missing header", token: "secret", want: http.StatusUnauthorized},
		{name: "wrong scheme", token: "secret", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "wrong token", token: "secret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", token: "secret", header: "Bearer secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}

			rr := serve(newTestHandler(newFakeEngine(), tt.token), http.MethodGet, "/api/sync/state", "", header)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
