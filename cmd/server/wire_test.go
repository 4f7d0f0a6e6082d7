// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package main

import (
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/tree"
)

func testConfig() *config.Config {
	return &config.Config{
		Solarguardian: config.SolarguardianConfig{
			BaseURL:           "http://127.0.0.1:1",
			AppKey:            "key",
			AppSecret:         "secret",
			RequestTimeout:    time.Second,
			RequestsPerSecond: 5,
		},
		Sync: config.SyncConfig{
			RetryAttempts: 1,
			HistoryWindow: time.Hour,
			AlarmWindow:   time.Hour,
		},
		Store:  config.StoreConfig{InMemory: true, GCInterval: time.Minute},
		NATS:   config.NATSConfig{SubjectPrefix: "solarguardian.state"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: 5 * time.Second},
	}
}

func TestBuildAppServices(t *testing.T) {
	store, err := tree.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{"sync only", func(*config.Config) {}, []string{"sync-manager"}},
		{"everything in memory", func(c *config.Config) {
			c.NATS.Enabled = true
			c.Server.Enabled = true
		}, []string{"sync-manager", "change-publisher", "http-server"}},
		{"gc on disk", func(c *config.Config) {
			c.Store.InMemory = false
			c.Store.Path = t.TempDir()
		}, []string{"sync-manager", "tree-gc"}},
		{"gc disabled", func(c *config.Config) {
			c.Store.InMemory = false
			c.Store.GCInterval = 0
		}, []string{"sync-manager"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			a, err := buildApp(cfg, store)
			if err != nil {
				t.Fatalf("buildApp() error = %v", err)
			}
			if !reflect.DeepEqual(a.services, tt.want) {
				t.Errorf("services = %v, want %v", a.services, tt.want)
			}
			if a.manager == nil || a.tree == nil {
				t.Error("manager and tree must be built")
			}
		})
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.ServerConfig{Host: "0.0.0.0", Port: 9090, Timeout: 7 * time.Second}
	srv := newHTTPServer(cfg, http.NotFoundHandler())
	if srv.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != 7*time.Second || srv.WriteTimeout != 7*time.Second {
		t.Errorf("timeouts = %v/%v, want server timeout", srv.ReadTimeout, srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout must be set")
	}
}

func TestStoreDescription(t *testing.T) {
	if got := storeDescription(&config.StoreConfig{InMemory: true, Path: "/x"}); got != "memory" {
		t.Errorf("in memory = %q", got)
	}
	if got := storeDescription(&config.StoreConfig{Path: "/data/tree"}); got != "/data/tree" {
		t.Errorf("on disk = %q", got)
	}
}
