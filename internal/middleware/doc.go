// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package middleware provides HTTP middleware for the read API.

Key Components:

  - RequestID: UUID-based request tracking, propagated to the logging context
  - PrometheusMetrics: request count and latency per route pattern

Both are plain func(http.Handler) http.Handler and plug into chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests by the chi route pattern
("/api/v1/states/*") rather than the raw URL so that tree paths do not
explode label cardinality. Requests that match no route are labelled
"unmatched".
*/
package middleware
