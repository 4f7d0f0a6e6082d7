// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// ConnectionPath is the tree state mirroring connectivity.
var ConnectionPath = tree.Join("info", "connection")

const connectionName = "Device or service connected"

// Connectivity is the "connected" flag, mirrored to the tree and to the
// solarguardian_connected gauge.
type Connectivity struct {
	store     tree.Writer
	connected atomic.Bool
}

// NewConnectivity returns a disconnected flag backed by store.
func NewConnectivity(store tree.Writer) *Connectivity {
	return &Connectivity{store: store}
}

// Connected returns the last value set.
func (c *Connectivity) Connected() bool {
	return c.connected.Load()
}

// Set updates the flag. The in-memory value and gauge change even when the
// tree write fails.
func (c *Connectivity) Set(ctx context.Context, connected bool) error {
	c.connected.Store(connected)
	metrics.SetConnected(connected)

	err := tree.Apply(ctx, c.store, []tree.Write{
		tree.Create(ConnectionPath, tree.KindState, connectionName),
		tree.Set(ConnectionPath, connected),
	})
	if err != nil {
		return fmt.Errorf("write connectivity: %w", err)
	}
	return nil
}
