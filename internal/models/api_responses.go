// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package models

import (
	"time"

	"github.com/tomtom215/solarguardian/internal/tree"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes carried in APIError.Code.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// APIResponse is the wrapper of every read API response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"prefix": "devices.10", "count": 1, "states": [...]},
//	  "metadata": {"timestamp": "2026-03-01T10:00:00Z", "query_time_ms": 2}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "state not found"},
//	  "metadata": {"timestamp": "2026-03-01T10:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Health is the payload of the health endpoints.
type Health struct {
	Status     string     `json:"status"`
	SyncState  string     `json:"sync_state"`
	Connected  bool       `json:"connected"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
	UptimeSecs float64    `json:"uptime_seconds"`
}

// NodeList is the payload of GET /api/v1/nodes.
type NodeList struct {
	Prefix string      `json:"prefix"`
	Count  int         `json:"count"`
	Nodes  []tree.Node `json:"nodes"`
}

// StateList is the payload of GET /api/v1/states.
type StateList struct {
	Prefix string       `json:"prefix"`
	Count  int          `json:"count"`
	States []tree.State `json:"states"`
}
