// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/solarguardian/internal/tree"
)

type mockGC struct {
	calls atomic.Int32
	err   func(call int32) error
}

func (m *mockGC) RunGC() error {
	n := m.calls.Add(1)
	if m.err != nil {
		return m.err(n)
	}
	return nil
}

func TestTreeGCServiceRunsPeriodically(t *testing.T) {
	gc := &mockGC{err: func(call int32) error {
		if call == 1 {
			return errors.New("transient")
		}
		return nil
	}}
	svc := NewTreeGCService(gc, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if gc.calls.Load() < 2 {
		t.Errorf("RunGC called %d times, want at least 2 (errors must not stop the loop)", gc.calls.Load())
	}
}

func TestTreeGCServiceStops(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		err      error
	}{
		{"disabled", 0, nil},
		{"store closed", time.Millisecond, tree.ErrClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := &mockGC{err: func(int32) error { return tt.err }}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := NewTreeGCService(gc, tt.interval).Serve(ctx); !errors.Is(err, suture.ErrDoNotRestart) {
				t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
			}
		})
	}
}

func TestTreeGCServiceInMemoryStore(t *testing.T) {
	store, err := tree.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := NewTreeGCService(store, 5*time.Millisecond).Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, in-memory GC should be a no-op", err)
	}
}
