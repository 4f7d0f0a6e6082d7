// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no stray config.yaml
// is picked up, and restores the working directory afterwards.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Solarguardian.BaseURL != "https://openapi.epsolarpv.com" {
		t.Errorf("BaseURL = %q", cfg.Solarguardian.BaseURL)
	}
	if cfg.Solarguardian.PollIntervalMs != 300000 {
		t.Errorf("PollIntervalMs = %d, want 300000", cfg.Solarguardian.PollIntervalMs)
	}
	if cfg.Solarguardian.AppKey != "" || cfg.Solarguardian.AppSecret != "" {
		t.Error("credentials should have no default")
	}
	if cfg.Sync.HistoryWindow != 24*time.Hour {
		t.Errorf("HistoryWindow = %v, want 24h", cfg.Sync.HistoryWindow)
	}
	if cfg.Sync.AlarmWindow != 168*time.Hour {
		t.Errorf("AlarmWindow = %v, want 168h", cfg.Sync.AlarmWindow)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS should be disabled by default")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"APP_KEY", "solarguardian.app_key"},
		{"APP_SECRET", "solarguardian.app_secret"},
		{"POLL_INTERVAL", "solarguardian.poll_interval_ms"},
		{"EPCLOUD_BASE_URL", "solarguardian.base_url"},
		{"TOKEN_REFRESH_INTERVAL", "solarguardian.token_refresh_interval"},
		{"SYNC_HISTORY_WINDOW", "sync.history_window"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"STORE_GC_INTERVAL", "store.gc_interval"},
		{"NATS_SUBJECT_PREFIX", "nats.subject_prefix"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(path)

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		custom := filepath.Join(dir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("APP_KEY", "key-123")
	t.Setenv("APP_SECRET", "secret-456")
	t.Setenv("POLL_INTERVAL", "60000")
	t.Setenv("SYNC_HISTORY_WINDOW", "12h")
	t.Setenv("STORE_IN_MEMORY", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Solarguardian.AppKey != "key-123" || cfg.Solarguardian.AppSecret != "secret-456" {
		t.Errorf("credentials not loaded: %+v", cfg.Solarguardian)
	}
	if got := cfg.Solarguardian.PollInterval(); got != time.Minute {
		t.Errorf("PollInterval() = %v, want 1m", got)
	}
	if cfg.Sync.HistoryWindow != 12*time.Hour {
		t.Errorf("HistoryWindow = %v, want 12h", cfg.Sync.HistoryWindow)
	}
	if !cfg.Store.InMemory {
		t.Error("Store.InMemory = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := chdirTemp(t)

	content := `
solarguardian:
  app_key: file-key
  app_secret: file-secret
  poll_interval_ms: 120000
store:
  path: ` + filepath.Join(dir, "tree") + `
server:
  port: 9090
`
	path := filepath.Join(dir, "solarguardian.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("APP_KEY", "env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Solarguardian.AppKey != "env-key" {
		t.Errorf("AppKey = %q, env should override file", cfg.Solarguardian.AppKey)
	}
	if cfg.Solarguardian.AppSecret != "file-secret" {
		t.Errorf("AppSecret = %q, want file-secret", cfg.Solarguardian.AppSecret)
	}
	if cfg.Solarguardian.PollInterval() != 2*time.Minute {
		t.Errorf("PollInterval() = %v, want 2m", cfg.Solarguardian.PollInterval())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("APP_KEY", "")
	t.Setenv("APP_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	for _, want := range []string{"solarguardian.app_key is required", "solarguardian.app_secret is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
