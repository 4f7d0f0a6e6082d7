// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/solarguardian/internal/models"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
)

// HealthLive is the liveness probe. It answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthReady is the readiness probe. The service is ready once the scheduler
// is running and the last contact with the cloud succeeded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	health := h.health()

	statusCode := http.StatusOK
	if health.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, &models.APIResponse{
		Status: health.Status,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

func (h *Handler) health() models.Health {
	health := models.Health{
		Status:     "not_ready",
		SyncState:  "unavailable",
		UptimeSecs: time.Since(h.startTime).Seconds(),
	}
	if h.sync == nil {
		return health
	}

	state := h.sync.State()
	health.SyncState = state.String()
	health.Connected = h.sync.Connected()
	if last := h.sync.LastSyncTime(); !last.IsZero() {
		health.LastSync = &last
	}
	if state == syncpkg.StateRunning && health.Connected {
		health.Status = "ready"
	}
	return health
}
