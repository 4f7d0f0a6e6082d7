// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/models"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
)

// SyncStatus is the payload of GET /api/v1/sync/status.
type SyncStatus struct {
	State     string               `json:"state"`
	Connected bool                 `json:"connected"`
	LastSync  *time.Time           `json:"last_sync,omitempty"`
	LastCycle *syncpkg.CycleResult `json:"last_cycle,omitempty"`
}

func (h *Handler) requireSync(w http.ResponseWriter) bool {
	if h.sync == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Sync manager not available", nil)
		return false
	}
	return true
}

// SyncStatusHandler reports the scheduler state and the last cycle.
func (h *Handler) SyncStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w) {
		return
	}
	start := time.Now()

	status := SyncStatus{
		State:     h.sync.State().String(),
		Connected: h.sync.Connected(),
	}
	if last := h.sync.LastSyncTime(); !last.IsZero() {
		status.LastSync = &last
	}
	if cycle, ok := h.sync.LastCycle(); ok {
		status.LastCycle = &cycle
	}
	respondSuccess(w, http.StatusOK, status, start)
}

// TriggerSync runs a manual cycle. By default the cycle runs in the
// background and the handler answers 202; with ?wait=true it blocks and
// returns the cycle report.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w) {
		return
	}
	start := time.Now()

	wait, err := getBoolParam(r, "wait", false)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	if state := h.sync.State(); state != syncpkg.StateRunning {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Sync manager is "+state.String(), nil)
		return
	}

	if !wait {
		ctx := context.WithoutCancel(r.Context())
		h.async(func() {
			if err := h.sync.TriggerSync(ctx); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Manual sync failed")
			}
		})
		respondSuccess(w, http.StatusAccepted, map[string]string{"message": "Sync triggered"}, start)
		return
	}

	if err := h.sync.TriggerSync(r.Context()); err != nil {
		respondSyncError(w, err)
		return
	}
	cycle, _ := h.sync.LastCycle()
	respondSuccess(w, http.StatusOK, cycle, start)
}

func respondSyncError(w http.ResponseWriter, err error) {
	var authErr *syncpkg.AuthError
	switch {
	case errors.Is(err, syncpkg.ErrCycleInProgress):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "A sync cycle is already in progress", nil)
	case errors.Is(err, syncpkg.ErrNotRunning), errors.Is(err, syncpkg.ErrStopped):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, err.Error(), nil)
	case errors.As(err, &authErr):
		respondError(w, http.StatusBadGateway, models.ErrCodeUnavailable, "Authentication with the cloud failed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Sync cycle cancelled", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Sync failed", err)
	}
}
