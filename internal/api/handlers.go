// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"context"
	"time"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// SyncController is the part of the sync manager the API uses.
type SyncController interface {
	State() syncpkg.State
	Connected() bool
	LastSyncTime() time.Time
	LastCycle() (syncpkg.CycleResult, bool)
	TriggerSync(ctx context.Context) error
}

var _ SyncController = (*syncpkg.Manager)(nil)

// Handler serves the API endpoints.
type Handler struct {
	store     tree.Reader
	sync      SyncController
	config    *config.ServerConfig
	startTime time.Time

	// async runs background manual cycles; tests replace it to wait.
	async func(fn func())
}

// NewHandler creates a handler over store and the sync manager. sync may be
// nil, in which case the sync endpoints answer 503.
func NewHandler(store tree.Reader, sync SyncController, cfg *config.ServerConfig) *Handler {
	logging.Debug().Str("addr", cfg.Addr()).Msg("Creating API handler")
	return &Handler{
		store:     store,
		sync:      sync,
		config:    cfg,
		startTime: time.Now(),
		async:     func(fn func()) { go fn() },
	}
}
