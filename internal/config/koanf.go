// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/solarguardian/config.yaml",
	"/etc/solarguardian/config.yml",
}

// ConfigPathEnvVar names the environment variable that points at a config file.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Solarguardian: SolarguardianConfig{
			BaseURL:              "https://openapi.epsolarpv.com",
			PollIntervalMs:       int(DefaultPollInterval / time.Millisecond),
			RequestTimeout:       30 * time.Second,
			RequestsPerSecond:    5,
			TokenRefreshInterval: 0,
		},
		Sync: SyncConfig{
			RetryAttempts: 3,
			RetryDelay:    1 * time.Second,
			HistoryWindow: 24 * time.Hour,
			AlarmWindow:   7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Path:       "/data/solarguardian",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Embedded:      true,
			Host:          "127.0.0.1",
			Port:          4222,
			SubjectPrefix: "solarguardian.state",
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              8080,
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, an optional YAML file, and environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lower-cased environment variable names to koanf keys.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"epcloud_base_url":        "solarguardian.base_url",
	"app_key":                 "solarguardian.app_key",
	"app_secret":              "solarguardian.app_secret",
	"poll_interval":           "solarguardian.poll_interval_ms",
	"epcloud_request_timeout": "solarguardian.request_timeout",
	"epcloud_rps":             "solarguardian.requests_per_second",
	"token_refresh_interval":  "solarguardian.token_refresh_interval",

	"sync_retry_attempts": "sync.retry_attempts",
	"sync_retry_delay":    "sync.retry_delay",
	"sync_history_window": "sync.history_window",
	"sync_alarm_window":   "sync.alarm_window",

	"store_path":        "store.path",
	"store_in_memory":   "store.in_memory",
	"store_gc_interval": "store.gc_interval",

	"nats_enabled":           "nats.enabled",
	"nats_url":               "nats.url",
	"nats_embedded":          "nats.embedded",
	"nats_host":              "nats.host",
	"nats_port":              "nats.port",
	"nats_subject_prefix":    "nats.subject_prefix",
	"nats_publish_unchanged": "nats.publish_unchanged",

	"http_enabled":        "server.enabled",
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"cors_origins":        "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
