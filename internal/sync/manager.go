// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
manager.go - Sync manager lifecycle and scheduling

Lifecycle:
  - NewManager(): wire the API client, tree store and configuration
  - Start(): authenticate, then run one cycle immediately and one per poll interval
  - Stop(): cancel the loop and any in-flight cycle without waiting
  - TriggerSync(): run one cycle on demand
  - Done(): closed once the loop goroutine has exited

States: Idle -> Running -> Stopped. Stopped is terminal. A failed
authentication at Start leaves the manager Idle and is not retried.

Thread Safety:
  - cycleMu: single-flight guard, taken with TryLock so overlapping
    triggers are skipped rather than queued
  - mu: protects state, lastSync, lastCycle and the loop cancel function
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// State is the lifecycle state of a Manager.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Cycle triggers.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

// Manager mirrors the EPEver cloud into the tree on a fixed interval.
type Manager struct {
	api   EPCloudAPI
	store tree.Writer
	cfg   *config.Config
	creds *CredentialManager
	conn  *Connectivity
	now   func() time.Time

	startMu sync.Mutex // serializes Start
	mu      sync.RWMutex
	state   State
	loopCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	lastSync  time.Time
	lastCycle *CycleResult

	cycleMu sync.Mutex
}

// NewManager creates an idle manager. api is usually a CircuitBreakerClient.
func NewManager(api EPCloudAPI, store tree.Writer, cfg *config.Config) *Manager {
	logging.Info().
		Str("api", cfg.Solarguardian.String()).
		Dur("interval", cfg.Solarguardian.PollInterval()).
		Dur("token_refresh", cfg.Solarguardian.TokenRefreshInterval).
		Int("retry_attempts", cfg.Sync.RetryAttempts).
		Msg("Sync manager config loaded")

	return &Manager{
		api:   api,
		store: store,
		cfg:   cfg,
		creds: NewCredentialManager(api, &cfg.Solarguardian),
		conn:  NewConnectivity(store),
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

// Start authenticates and starts the polling loop. On an *AuthError the
// manager stays Idle with connectivity false and no stage runs.
func (m *Manager) Start(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	switch m.State() {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}

	logging.Info().Msg("Starting sync manager...")
	m.setConnected(ctx, false)

	if _, err := m.creds.Acquire(ctx); err != nil {
		m.setConnected(ctx, false)
		logging.Error().Err(err).Msg("Authentication failed, sync manager not started")
		return err
	}
	m.setConnected(ctx, true)

	loopCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.state = StateRunning
	m.loopCtx = loopCtx
	m.cancel = cancel
	m.mu.Unlock()

	go m.syncLoop(loopCtx)

	logging.Info().Dur("interval", m.cfg.Solarguardian.PollInterval()).Msg("Sync manager started")
	return nil
}

// Stop cancels the loop and any in-flight cycle and clears connectivity. It
// does not wait for the loop to exit; use Done for that.
func (m *Manager) Stop() error {
	m.mu.Lock()
	switch m.state {
	case StateIdle:
		m.mu.Unlock()
		return ErrNotRunning
	case StateStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.state = StateStopped
	cancel := m.cancel
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	cancel()
	m.setConnected(context.Background(), false)
	return nil
}

// Done is closed when the polling loop has exited. It is never closed for a
// manager that was not started.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Connected reports the connectivity flag.
func (m *Manager) Connected() bool {
	return m.conn.Connected()
}

// LastSyncTime returns the start time of the last completed cycle.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastCycle returns a copy of the last completed cycle result.
func (m *Manager) LastCycle() (CycleResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastCycle == nil {
		return CycleResult{}, false
	}
	out := *m.lastCycle
	out.Stages = append([]StageResult(nil), m.lastCycle.Stages...)
	return out, true
}

// TriggerSync runs one cycle now and waits for it. It returns
// ErrCycleInProgress when a cycle is already running. The cycle is cancelled
// when either ctx or the manager is stopped.
func (m *Manager) TriggerSync(ctx context.Context) error {
	m.mu.RLock()
	state, loopCtx := m.state, m.loopCtx
	m.mu.RUnlock()

	switch state {
	case StateIdle:
		return ErrNotRunning
	case StateStopped:
		return ErrStopped
	}

	cycleCtx, cancel := context.WithCancel(loopCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	_, err := m.runCycle(cycleCtx, TriggerManual)
	return err
}

func (m *Manager) syncLoop(ctx context.Context) {
	defer close(m.done)

	if _, err := m.runCycle(ctx, TriggerStartup); err != nil && !errors.Is(err, ErrCycleInProgress) {
		logging.Warn().Err(err).Msg("Initial sync failed (will retry)")
	}

	ticker := time.NewTicker(m.cfg.Solarguardian.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync loop stopped")
			return
		case <-ticker.C:
			if _, err := m.runCycle(ctx, TriggerInterval); err != nil {
				if errors.Is(err, ErrCycleInProgress) {
					logging.Debug().Msg("Previous cycle still running, tick skipped")
					continue
				}
				logging.Error().Err(err).Msg("Sync failed")
			}
		}
	}
}

// runCycle runs the pipeline once under the single-flight guard. Stage
// failures are reported in the result, not as an error.
func (m *Manager) runCycle(ctx context.Context, trigger string) (*CycleResult, error) {
	if !m.cycleMu.TryLock() {
		metrics.SyncCyclesSkipped.Inc()
		return nil, ErrCycleInProgress
	}
	defer m.cycleMu.Unlock()

	cycleID := logging.GenerateCycleID()
	ctx = logging.ContextWithCycleID(ctx, cycleID)
	log := logging.Ctx(ctx)

	cred, err := m.creds.EnsureFresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.setConnected(ctx, false)
		}
		return nil, err
	}
	if !m.conn.Connected() && ctx.Err() == nil {
		m.setConnected(ctx, true)
	}

	started := m.now()
	log.Info().Str("trigger", trigger).Msg("Sync cycle started")

	result := &CycleResult{
		ID:        cycleID,
		Trigger:   trigger,
		StartedAt: started,
		Stages:    m.runPipeline(ctx, cred),
	}
	result.Duration = m.now().Sub(started)

	m.mu.Lock()
	m.lastCycle = result
	m.lastSync = started
	m.mu.Unlock()

	failed := result.Failed()
	metrics.RecordCycle(result.Duration, failed)

	written, skipped := 0, 0
	for _, s := range result.Stages {
		written += s.Written
		skipped += s.Skipped
	}
	log.Info().
		Str("trigger", trigger).
		Int("stages", len(result.Stages)).
		Int("failed_stages", failed).
		Int("written", written).
		Int("skipped", skipped).
		Dur("duration", result.Duration).
		Msg("Sync cycle completed")

	return result, nil
}

func (m *Manager) setConnected(ctx context.Context, connected bool) {
	if err := m.conn.Set(ctx, connected); err != nil {
		logging.Warn().Err(err).Bool("connected", connected).Msg("Failed to mirror connectivity")
	}
}
