// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package api provides the read-only HTTP API over the mirrored tree.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers
  - Response formatting: models.APIResponse envelopes with metadata

Endpoints:

	GET  /api/v1/health/live       process is up
	GET  /api/v1/health/ready      503 until the scheduler runs and the cloud is reachable
	GET  /api/v1/nodes?prefix=     node metadata under a path prefix
	GET  /api/v1/states?prefix=    current values under a path prefix
	GET  /api/v1/states/{path}     one value
	GET  /api/v1/sync/status       scheduler state and the last cycle report
	POST /api/v1/sync              run a cycle now (?wait=true blocks for the result)
	GET  /metrics                  Prometheus exposition

Prefixes use the tree's dot notation ("devices.10.parameters") and match
whole segments: "devices.1" does not match "devices.10".

Middleware Stack:

Applied globally, in order: request ID, real IP, panic recovery, CORS (only
when server.cors_origins is set), Prometheus metrics. The /api/v1 routes are additionally rate limited per client IP with
go-chi/httprate when server.rate_limit_requests is non-zero.
*/
package api
