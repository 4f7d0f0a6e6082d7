// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync cycle metrics
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_cycles_total",
			Help: "Total number of completed sync cycles",
		},
		[]string{"result"}, // "success", "partial"
	)

	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solarguardian_sync_cycle_duration_seconds",
			Help:    "Duration of full sync cycles in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	SyncCyclesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_cycles_skipped_total",
			Help: "Ticks skipped because a cycle was still running",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarguardian_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last cycle in which every stage succeeded",
		},
	)

	SyncStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solarguardian_sync_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	SyncStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_stage_errors_total",
			Help: "Pipeline stages that failed, by failure kind",
		},
		[]string{"stage", "kind"}, // kind: "soft", "hard"
	)

	SyncEntitiesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_entities_written_total",
			Help: "Entities mirrored into the tree",
		},
		[]string{"kind"},
	)

	SyncMappingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_mapping_errors_total",
			Help: "Entities skipped because they could not be mapped or written",
		},
		[]string{"kind"},
	)

	SyncPageTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_sync_page_truncations_total",
			Help: "List responses whose total exceeded the single fetched page",
		},
		[]string{"stage"},
	)

	// Remote API metrics
	EPCloudRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_epcloud_requests_total",
			Help: "Requests sent to the EPEver cloud API",
		},
		[]string{"endpoint", "result"}, // result: "ok", "status_error", "transport_error"
	)

	EPCloudRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solarguardian_epcloud_request_duration_seconds",
			Help:    "Latency of EPEver cloud API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EPCloudRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarguardian_epcloud_rate_limited_total",
			Help: "HTTP 429 responses received from the EPEver cloud API",
		},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_auth_attempts_total",
			Help: "Authentication attempts against the EPEver cloud API",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Tree store metrics
	TreeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_tree_writes_total",
			Help: "Tree store operations that committed",
		},
		[]string{"op"}, // "create", "exists", "write"
	)

	TreeNotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarguardian_tree_notifications_dropped_total",
			Help: "Change notifications dropped because a subscriber was full",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_events_published_total",
			Help: "Tree changes forwarded to NATS",
		},
		[]string{"result"}, // "ok", "error", "skipped"
	)

	// Connectivity
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarguardian_connected",
			Help: "1 when the last authentication succeeded and the engine is running",
		},
	)

	// Read API metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarguardian_http_requests_total",
			Help: "Requests served by the read API",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solarguardian_http_request_duration_seconds",
			Help:    "Read API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordCycle records one finished cycle. failedStages is the number of
// stages that returned an error.
func RecordCycle(duration time.Duration, failedStages int) {
	SyncCycleDuration.Observe(duration.Seconds())
	if failedStages > 0 {
		SyncCyclesTotal.WithLabelValues("partial").Inc()
		return
	}
	SyncCyclesTotal.WithLabelValues("success").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordStage records one stage execution. kind is "" on success.
func RecordStage(stage string, duration time.Duration, kind string) {
	SyncStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if kind != "" {
		SyncStageErrors.WithLabelValues(stage, kind).Inc()
	}
}

// RecordEPCloudRequest records one remote API call.
func RecordEPCloudRequest(endpoint, result string, duration time.Duration) {
	EPCloudRequestsTotal.WithLabelValues(endpoint, result).Inc()
	EPCloudRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordHTTPRequest records one read API request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetConnected mirrors the connectivity flag.
func SetConnected(connected bool) {
	if connected {
		Connected.Set(1)
		return
	}
	Connected.Set(0)
}
