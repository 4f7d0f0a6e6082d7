// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package metrics defines the Prometheus metrics exported at /metrics.

All collectors are registered with the default registry through promauto at
package initialization. Callers record through the Record* helpers where one
exists so label values stay consistent.

# Metric Families

Sync cycles and stages:
  - solarguardian_sync_cycles_total{result}
  - solarguardian_sync_cycle_duration_seconds
  - solarguardian_sync_cycles_skipped_total
  - solarguardian_sync_last_success_timestamp_seconds
  - solarguardian_sync_stage_duration_seconds{stage}
  - solarguardian_sync_stage_errors_total{stage,kind}
  - solarguardian_sync_entities_written_total{kind}
  - solarguardian_sync_mapping_errors_total{kind}
  - solarguardian_sync_page_truncations_total{stage}

Remote API:
  - solarguardian_epcloud_requests_total{endpoint,result}
  - solarguardian_epcloud_request_duration_seconds{endpoint}
  - solarguardian_epcloud_rate_limited_total
  - solarguardian_auth_attempts_total{result}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_consecutive_failures{name},
    circuit_breaker_state_transitions_total{name,from_state,to_state}

Tree store and notification:
  - solarguardian_tree_writes_total{op}
  - solarguardian_tree_notifications_dropped_total
  - solarguardian_events_published_total{result}

Connectivity and read API:
  - solarguardian_connected
  - solarguardian_http_requests_total{method,route,status}
  - solarguardian_http_request_duration_seconds{method,route}
*/
package metrics
