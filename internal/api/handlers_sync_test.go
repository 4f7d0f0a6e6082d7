// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/models"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
)

func TestSyncStatus(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &mockSync{
		state:     syncpkg.StateRunning,
		connected: true,
		lastSync:  last,
		lastCycle: &syncpkg.CycleResult{ID: "cycle-1", Trigger: syncpkg.TriggerInterval, StartedAt: last, Stages: []syncpkg.StageResult{
			{Name: syncpkg.StageStations, Written: 2},
			{Name: syncpkg.StageGateways, ErrorKind: syncpkg.ErrorKindSoft, Error: "status 1"},
		}},
	}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	rec, resp := do(t, handler, http.MethodGet, "/api/v1/sync/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status SyncStatus
	decodeData(t, resp, &status)
	if status.State != "running" || !status.Connected || status.LastSync == nil || !status.LastSync.Equal(last) {
		t.Errorf("status = %+v", status)
	}
	if status.LastCycle == nil || status.LastCycle.ID != "cycle-1" || len(status.LastCycle.Stages) != 2 {
		t.Fatalf("last cycle = %+v", status.LastCycle)
	}
	if status.LastCycle.Stages[1].ErrorKind != syncpkg.ErrorKindSoft {
		t.Errorf("stage error kind = %q", status.LastCycle.Stages[1].ErrorKind)
	}
}

func TestSyncEndpointsWithoutManager(t *testing.T) {
	t.Parallel()

	handler, _ := newTestRouter(t, newTestStore(t), nil)
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sync/status"},
		{http.MethodPost, "/api/v1/sync"},
	} {
		rec, _ := do(t, handler, req.method, req.path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s = %d, want 503", req.method, req.path, rec.Code)
		}
	}
}

func TestTriggerSyncAsync(t *testing.T) {
	t.Parallel()

	s := &mockSync{state: syncpkg.StateRunning}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	rec, resp := do(t, handler, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusAccepted || resp.Status != models.StatusSuccess {
		t.Fatalf("status = %d %q", rec.Code, resp.Status)
	}
	if s.triggerCount() != 1 {
		t.Errorf("TriggerSync calls = %d, want 1", s.triggerCount())
	}
}

func TestTriggerSyncAsyncOutlivesRequest(t *testing.T) {
	t.Parallel()

	var cycleCtx context.Context
	s := &mockSync{state: syncpkg.StateRunning, triggerSync: func(ctx context.Context) error {
		cycleCtx = ctx
		return nil
	}}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	reqCtx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil).WithContext(reqCtx)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	cancel()

	if cycleCtx == nil || cycleCtx.Err() != nil {
		t.Error("background cycle context must not end with the request")
	}
}

func TestTriggerSyncWait(t *testing.T) {
	t.Parallel()

	s := &mockSync{state: syncpkg.StateRunning}
	s.triggerSync = func(context.Context) error {
		s.lastCycle = &syncpkg.CycleResult{ID: "manual-1", Trigger: syncpkg.TriggerManual}
		return nil
	}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	rec, resp := do(t, handler, http.MethodPost, "/api/v1/sync?wait=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var cycle syncpkg.CycleResult
	decodeData(t, resp, &cycle)
	if cycle.ID != "manual-1" || cycle.Trigger != syncpkg.TriggerManual {
		t.Errorf("cycle = %+v", cycle)
	}
}

func TestTriggerSyncWaitErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"in progress", syncpkg.ErrCycleInProgress, http.StatusConflict},
		{"stopped", syncpkg.ErrStopped, http.StatusServiceUnavailable},
		{"auth", &syncpkg.AuthError{Status: 10002, Info: "bad secret"}, http.StatusBadGateway},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &mockSync{state: syncpkg.StateRunning, triggerSync: func(context.Context) error { return tt.err }}
			handler, _ := newTestRouter(t, newTestStore(t), s)

			rec, resp := do(t, handler, http.MethodPost, "/api/v1/sync?wait=1")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if resp.Error == nil {
				t.Error("missing error body")
			}
		})
	}
}

func TestTriggerSyncRejectsBadWait(t *testing.T) {
	t.Parallel()

	s := &mockSync{state: syncpkg.StateRunning}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	rec, _ := do(t, handler, http.MethodPost, "/api/v1/sync?wait=soon")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if s.triggerCount() != 0 {
		t.Error("bad request must not trigger a cycle")
	}
}

func TestTriggerSyncNotRunning(t *testing.T) {
	t.Parallel()

	s := &mockSync{state: syncpkg.StateIdle}
	handler, _ := newTestRouter(t, newTestStore(t), s)

	rec, _ := do(t, handler, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if s.triggerCount() != 0 {
		t.Error("idle manager must not be triggered")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: time.Second, RateLimitRequests: 2, RateLimitWindow: time.Minute}
	h := NewHandler(newTestStore(t), nil, cfg)
	handler := NewRouter(h).Setup()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := do(t, handler, http.MethodGet, "/api/v1/states")
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Health probes are exempt.
	for i := 0; i < 5; i++ {
		if rec, _ := do(t, handler, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
			t.Fatalf("health probe %d = %d", i, rec.Code)
		}
	}
}
