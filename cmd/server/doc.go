// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package main is the entry point for the Solarguardian server.

Solarguardian mirrors an EPEver Solarguardian cloud account (power stations,
gateways, devices, organizations, device parameters and alarms) into a
local Badger-backed path tree, refreshing it on a fixed interval. Tree
changes can be published to NATS and the tree is readable over HTTP.

# Application Architecture

	solarguardian (root)
	├── data-layer
	│   └── tree-gc             (store.gc_interval > 0, on-disk store)
	├── sync-layer
	│   └── sync-manager
	├── events-layer
	│   └── change-publisher    (nats.enabled)
	└── api-layer
	    └── http-server         (server.enabled)

Initialization order:

 1. Configuration: koanf defaults, optional YAML file, environment
 2. Logging: zerolog, JSON or console
 3. Tree store: BadgerDB, on disk or in memory
 4. EPCloud client: rate limited HTTP client behind a circuit breaker
 5. Sync manager
 6. Supervisor tree with the services above
 7. Signal handling: SIGINT and SIGTERM cancel the root context

# Configuration

Required:

	APP_KEY=...              Solarguardian application key
	APP_SECRET=...           Solarguardian application secret

Common:

	EPCLOUD_BASE_URL=https://openapi.epsolarpv.com
	POLL_INTERVAL=300000     cycle interval in milliseconds
	STORE_PATH=/data/solarguardian
	NATS_ENABLED=false
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

A YAML file is read from CONFIG_PATH or the default locations.

# Shutdown

On signal the supervisor stops every service within its timeout: the HTTP
server drains, the publisher closes its NATS connection, the sync manager
cancels any in-flight cycle and writes connectivity false. The store is
closed last.
*/
package main
