// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/solarguardian/internal/logging"
)

// DefaultPollInterval is used when poll_interval_ms is unset or zero.
const DefaultPollInterval = 300000 * time.Millisecond

// Config holds all application configuration.
type Config struct {
	Solarguardian SolarguardianConfig `koanf:"solarguardian"`
	Sync          SyncConfig          `koanf:"sync"`
	Store         StoreConfig         `koanf:"store"`
	NATS          NATSConfig          `koanf:"nats"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// SolarguardianConfig holds the remote API connection settings.
type SolarguardianConfig struct {
	BaseURL   string `koanf:"base_url" validate:"required,url"`
	AppKey    string `koanf:"app_key" validate:"required"`
	AppSecret string `koanf:"app_secret" validate:"required"`

	// PollIntervalMs is the cycle interval in milliseconds. 0 selects the default.
	PollIntervalMs int `koanf:"poll_interval_ms" validate:"gte=0"`

	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`

	// TokenRefreshInterval re-authenticates before a cycle once the token is
	// older than this. 0 keeps the startup token for the process lifetime.
	TokenRefreshInterval time.Duration `koanf:"token_refresh_interval" validate:"gte=0"`
}

// SyncConfig holds pipeline tuning.
type SyncConfig struct {
	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=1"`
	RetryDelay    time.Duration `koanf:"retry_delay" validate:"gte=0"`
	HistoryWindow time.Duration `koanf:"history_window" validate:"gt=0"`
	AlarmWindow   time.Duration `koanf:"alarm_window" validate:"gt=0"`
}

// StoreConfig holds the Badger tree store settings.
type StoreConfig struct {
	Path     string `koanf:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `koanf:"in_memory"`

	// GCInterval is the period of value log garbage collection. 0 disables it.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// NATSConfig holds the change-notification publisher settings.
type NATSConfig struct {
	Enabled          bool   `koanf:"enabled"`
	URL              string `koanf:"url"`
	Embedded         bool   `koanf:"embedded"`
	Host             string `koanf:"host"`
	Port             int    `koanf:"port" validate:"gte=-1,lte=65535"`
	SubjectPrefix    string `koanf:"subject_prefix" validate:"required"`
	PublishUnchanged bool   `koanf:"publish_unchanged"`
}

// ServerConfig holds the read API settings.
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`

	// CORSOrigins lists browser origins allowed to read the API. Empty
	// disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,required"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// PollInterval returns the effective cycle interval.
func (c *SolarguardianConfig) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Addr returns the listen address of the read API.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingOptions converts the section into logging.Config.
func (c *LoggingConfig) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// String renders the remote API section with credentials masked, for startup logs.
func (c *SolarguardianConfig) String() string {
	return fmt.Sprintf("base_url=%s app_key=%s app_secret=%s poll_interval=%s",
		c.BaseURL, logging.SanitizeSecret(c.AppKey), logging.SanitizeSecret(c.AppSecret), c.PollInterval())
}
