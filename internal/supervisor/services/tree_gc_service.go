// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package services

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// GarbageCollector runs one value log GC pass.
type GarbageCollector interface {
	RunGC() error
}

var _ GarbageCollector = (*tree.BadgerStore)(nil)

// TreeGCService periodically reclaims Badger value log space. Rewritten state
// values leave stale entries behind on every cycle.
type TreeGCService struct {
	store    GarbageCollector
	interval time.Duration
}

// NewTreeGCService runs store.RunGC every interval.
func NewTreeGCService(store GarbageCollector, interval time.Duration) *TreeGCService {
	return &TreeGCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (g *TreeGCService) Serve(ctx context.Context) error {
	if g.interval <= 0 {
		return suture.ErrDoNotRestart
	}
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := g.store.RunGC()
			switch {
			case err == nil:
				logging.Debug().Msg("Tree value log GC pass complete")
			case errors.Is(err, tree.ErrClosed):
				return suture.ErrDoNotRestart
			default:
				logging.Warn().Err(err).Msg("Tree value log GC failed")
			}
		}
	}
}

func (g *TreeGCService) String() string {
	return "tree-gc"
}
