// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/models"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// mockSync implements SyncController with overridable func fields.
type mockSync struct {
	state       syncpkg.State
	connected   bool
	lastSync    time.Time
	lastCycle   *syncpkg.CycleResult
	triggerSync func(ctx context.Context) error

	mu       sync.Mutex
	triggers int
}

func (m *mockSync) State() syncpkg.State    { return m.state }
func (m *mockSync) Connected() bool         { return m.connected }
func (m *mockSync) LastSyncTime() time.Time { return m.lastSync }

func (m *mockSync) LastCycle() (syncpkg.CycleResult, bool) {
	if m.lastCycle == nil {
		return syncpkg.CycleResult{}, false
	}
	return *m.lastCycle, true
}

func (m *mockSync) TriggerSync(ctx context.Context) error {
	m.mu.Lock()
	m.triggers++
	m.mu.Unlock()
	if m.triggerSync != nil {
		return m.triggerSync(ctx)
	}
	return nil
}

func (m *mockSync) triggerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggers
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: 5 * time.Second}
}

// newTestStore returns an in-memory tree holding one station and one device.
func newTestStore(t *testing.T) *tree.BadgerStore {
	t.Helper()
	store, err := tree.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	err = tree.Apply(ctx, store, []tree.Write{
		tree.Create(tree.Join("powerStations", "1"), tree.KindDevice, "Farm"),
		tree.Set(tree.Join("powerStations", "1", "name"), "Farm"),
		tree.Create(tree.Join("devices", "1"), tree.KindDevice, "Charger"),
		tree.Set(tree.Join("devices", "1", "name"), "Charger"),
		tree.Create(tree.Join("devices", "10"), tree.KindDevice, "Inverter"),
		tree.Set(tree.Join("devices", "10", "name"), "Inverter"),
		tree.Set(tree.Join("devices", "10", "status"), 1),
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func newTestRouter(t *testing.T, store tree.Reader, s SyncController) (http.Handler, *Handler) {
	t.Helper()
	h := NewHandler(store, s, testServerConfig())
	h.async = func(fn func()) { fn() }
	return NewRouter(h).Setup(), h
}

func do(t *testing.T, handler http.Handler, method, target string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not an APIResponse: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, resp
}

// decodeData re-encodes the generic Data field into out.
func decodeData(t *testing.T, resp models.APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v\n%s", err, raw)
	}
}
