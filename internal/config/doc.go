// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package config loads and validates Solarguardian configuration.

Configuration is layered with koanf v2:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/solarguardian/config.yaml, /etc/solarguardian/config.yml
 3. Environment variables, via an explicit mapping (envMappings)

The merged result is validated with struct tags and cross-field rules.
Load fails when validation fails, so the sync engine never starts with
missing credentials.

# Environment Variables

Remote API:
  - APP_KEY, APP_SECRET: API credentials (required)
  - POLL_INTERVAL: cycle interval in milliseconds (default: 300000)
  - EPCLOUD_BASE_URL: API base URL (default: https://openapi.epsolarpv.com)
  - EPCLOUD_REQUEST_TIMEOUT: per-request timeout (default: 30s)
  - EPCLOUD_RPS: request rate limit (default: 5)
  - TOKEN_REFRESH_INTERVAL: re-authenticate after this age (default: 0, never)

Pipeline:
  - SYNC_RETRY_ATTEMPTS, SYNC_RETRY_DELAY: transport retry (default: 3, 1s)
  - SYNC_HISTORY_WINDOW: parameter history lookback (default: 24h)
  - SYNC_ALARM_WINDOW: alarm lookback (default: 168h)

Store:
  - STORE_PATH: Badger directory (default: /data/solarguardian)
  - STORE_IN_MEMORY: keep the tree in memory only (default: false)
  - STORE_GC_INTERVAL: value log GC period, 0 disables (default: 10m)

Change notification:
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_HOST, NATS_PORT
  - NATS_SUBJECT_PREFIX (default: solarguardian.state)
  - NATS_PUBLISH_UNCHANGED (default: false)

Read API:
  - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - CORS_ORIGINS: comma separated browser origins (default: none)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example YAML

	solarguardian:
	  app_key: "..."
	  app_secret: "..."
	  poll_interval_ms: 60000
	store:
	  path: /var/lib/solarguardian
	nats:
	  enabled: true
*/
package config
