// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package supervisor

import (
	"context"
	"sync/atomic"
)

// mockService counts Serve calls. With serveFunc nil it blocks until the
// context is canceled.
type mockService struct {
	name      string
	serveFunc func(ctx context.Context, call int32) error
	started   atomic.Int32
	stopped   atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	call := m.started.Add(1)
	defer m.stopped.Add(1)
	if m.serveFunc != nil {
		return m.serveFunc(ctx, call)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }
