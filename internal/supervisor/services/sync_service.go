// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/solarguardian/internal/logging"
	syncpkg "github.com/tomtom215/solarguardian/internal/sync"
)

// SyncManager is the lifecycle of *sync.Manager.
type SyncManager interface {
	Start(ctx context.Context) error
	Stop() error
	Done() <-chan struct{}
}

var _ SyncManager = (*syncpkg.Manager)(nil)

// SyncService adapts the manager's Start/Stop lifecycle to suture.
//
// The manager is single-use: once stopped it cannot start again, and an
// authentication failure will not fix itself by retrying. Both cases return
// suture.ErrDoNotRestart, leaving the API up with connectivity false.
type SyncService struct {
	manager     SyncManager
	stopTimeout time.Duration
}

// NewSyncService wraps manager.
func NewSyncService(manager SyncManager) *SyncService {
	return &SyncService{manager: manager, stopTimeout: 10 * time.Second}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		var authErr *syncpkg.AuthError
		switch {
		case errors.As(err, &authErr):
			logging.Error().Err(err).Msg("Sync disabled until restart: authentication rejected")
			return suture.ErrDoNotRestart
		case errors.Is(err, syncpkg.ErrStopped):
			return suture.ErrDoNotRestart
		case ctx.Err() != nil:
			return ctx.Err()
		}
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-s.manager.Done():
		logging.Warn().Msg("Sync loop exited unexpectedly")
	}

	if err := s.manager.Stop(); err != nil && !errors.Is(err, syncpkg.ErrStopped) {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	select {
	case <-s.manager.Done():
	case <-time.After(s.stopTimeout):
		logging.Warn().Dur("timeout", s.stopTimeout).Msg("Sync loop did not exit before timeout")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return suture.ErrDoNotRestart
}

func (s *SyncService) String() string {
	return "sync-manager"
}
