// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/models/epcloud"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// Stage names, in pipeline order.
const (
	StageStations      = "stations"
	StageGateways      = "gateways"
	StageDevices       = "devices"
	StageOrganizations = "organizations"
	StageParameters    = "parameters"
	StageAlarms        = "alarms"
)

// Error kinds reported in StageResult.ErrorKind.
const (
	ErrorKindSoft = "soft"
	ErrorKindHard = "hard"
)

// StageResult is the outcome of one stage of one cycle.
type StageResult struct {
	Name      string        `json:"name"`
	Fetched   int           `json:"fetched"`
	Written   int           `json:"written"`
	Skipped   int           `json:"skipped"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
}

// CycleResult is the outcome of one synchronization cycle.
type CycleResult struct {
	ID        string        `json:"id"`
	Trigger   string        `json:"trigger"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Stages    []StageResult `json:"stages"`
}

// Failed returns the number of stages that ended with an error.
func (r *CycleResult) Failed() int {
	n := 0
	for i := range r.Stages {
		if r.Stages[i].Err != nil {
			n++
		}
	}
	return n
}

// Stage returns the result of the named stage.
func (r *CycleResult) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

type stageFunc func(ctx context.Context, cred Credential, res *StageResult) error

type stage struct {
	name string
	run  stageFunc
}

func (m *Manager) stages() []stage {
	return []stage{
		{StageStations, m.syncPowerStations},
		{StageGateways, m.syncGateways},
		{StageDevices, m.syncDevices},
		{StageOrganizations, m.syncOrganizations},
		{StageParameters, m.syncParameters},
		{StageAlarms, m.syncAlarms},
	}
}

// runPipeline runs every stage in order. A failed stage never stops the
// stages after it; a cancelled context does.
func (m *Manager) runPipeline(ctx context.Context, cred Credential) []StageResult {
	stages := m.stages()
	results := make([]StageResult, 0, len(stages))
	for _, s := range stages {
		if ctx.Err() != nil {
			logging.Ctx(ctx).Info().Str("stage", s.name).Msg("Cycle cancelled, skipping remaining stages")
			break
		}
		results = append(results, m.runStage(ctx, cred, s))
	}
	return results
}

// classifyError returns the stage error kind of err.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if isStatusError(err) {
		return ErrorKindSoft
	}
	return ErrorKindHard
}

// runStage is the error boundary of one stage: it recovers panics, classifies
// the error, records metrics and logs the outcome.
func (m *Manager) runStage(ctx context.Context, cred Credential, s stage) (res StageResult) {
	res.Name = s.name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("stage %s panicked: %v", s.name, r)
		}
		res.Duration = time.Since(start)
		res.ErrorKind = classifyError(res.Err)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		metrics.RecordStage(s.name, res.Duration, res.ErrorKind)

		log := logging.Ctx(ctx)
		switch res.ErrorKind {
		case ErrorKindSoft:
			log.Warn().Err(res.Err).Str("stage", s.name).Msg("Stage skipped: remote API reported an error")
		case ErrorKindHard:
			log.Error().Err(res.Err).Str("stage", s.name).Msg("Stage failed")
		default:
			log.Debug().
				Str("stage", s.name).
				Int("written", res.Written).
				Int("skipped", res.Skipped).
				Dur("duration", res.Duration).
				Msg("Stage complete")
		}
	}()

	res.Err = s.run(ctx, cred, &res)
	return res
}

// fetch runs one remote call with the configured retry policy.
func (m *Manager) fetch(ctx context.Context, fn func() error) error {
	return retryWithBackoff(ctx, m.cfg.Sync.RetryAttempts, m.cfg.Sync.RetryDelay, fn)
}

// noteTruncation logs and counts a list whose server-side total exceeds the
// single page that is consumed.
func noteTruncation(ctx context.Context, res *StageResult, reported int64, returned int) {
	if reported <= int64(returned) {
		return
	}
	res.Truncated = true
	metrics.SyncPageTruncations.WithLabelValues(res.Name).Inc()
	logging.Ctx(ctx).Warn().
		Str("stage", res.Name).
		Int64("total", reported).
		Int("returned", returned).
		Msg("Remote list has more records than one page; only the first page is mirrored")
}

// writeEntity applies one entity's writes. Mapping and store failures skip
// the entity; only context cancellation is returned.
func (m *Manager) writeEntity(ctx context.Context, res *StageResult, kind string, writes []tree.Write, mapErr error) error {
	if mapErr != nil {
		res.Skipped++
		metrics.SyncMappingErrors.WithLabelValues(kind).Inc()
		logging.Ctx(ctx).Warn().Err(mapErr).Str("stage", res.Name).Str("kind", kind).Msg("Skipping record that could not be mapped")
		return nil
	}
	if err := tree.Apply(ctx, m.store, writes); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		res.Skipped++
		logging.Ctx(ctx).Error().Err(err).Str("stage", res.Name).Str("kind", kind).Msg("Failed to write record")
		return nil
	}
	res.Written++
	metrics.SyncEntitiesWritten.WithLabelValues(kind).Inc()
	return nil
}

// mirrorRecords decodes and writes every element of a list payload.
func mirrorRecords[T any](ctx context.Context, m *Manager, res *StageResult, kind string, items []json.RawMessage, mapFn func(T) ([]tree.Write, error)) error {
	for _, raw := range items {
		rec, err := decodeRecord[T](kind, raw)
		var writes []tree.Write
		if err == nil {
			writes, err = mapFn(rec)
		}
		if werr := m.writeEntity(ctx, res, kind, writes, err); werr != nil {
			return werr
		}
	}
	return nil
}

func (m *Manager) syncPowerStations(ctx context.Context, cred Credential, res *StageResult) error {
	var page *epcloud.ListPage
	err := m.fetch(ctx, func() error {
		var err error
		page, err = m.api.GetPowerStations(ctx, cred.Token)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch power stations: %w", err)
	}

	res.Fetched = len(page.List)
	logging.Ctx(ctx).Info().Str("stage", res.Name).Int("count", res.Fetched).Msg("Fetched power stations")
	noteTruncation(ctx, res, page.Reported(), len(page.List))
	return mirrorRecords(ctx, m, res, KindPowerStation, page.List, MapPowerStation)
}

func (m *Manager) syncGateways(ctx context.Context, cred Credential, res *StageResult) error {
	var page *epcloud.GatewayPage
	err := m.fetch(ctx, func() error {
		var err error
		page, err = m.api.GetGateways(ctx, cred.Token)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch gateways: %w", err)
	}

	res.Fetched = len(page.Dev)
	logging.Ctx(ctx).Info().Str("stage", res.Name).Int("count", res.Fetched).Msg("Fetched gateways")
	noteTruncation(ctx, res, page.Total.Int64(), len(page.Dev))
	return mirrorRecords(ctx, m, res, KindGateway, page.Dev, MapGateway)
}

func (m *Manager) fetchDevices(ctx context.Context, cred Credential) (*epcloud.ListPage, error) {
	var page *epcloud.ListPage
	err := m.fetch(ctx, func() error {
		var err error
		page, err = m.api.GetDevices(ctx, cred.Token)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch devices: %w", err)
	}
	return page, nil
}

func (m *Manager) syncDevices(ctx context.Context, cred Credential, res *StageResult) error {
	page, err := m.fetchDevices(ctx, cred)
	if err != nil {
		return err
	}

	res.Fetched = len(page.List)
	logging.Ctx(ctx).Info().Str("stage", res.Name).Int("count", res.Fetched).Msg("Fetched devices")
	noteTruncation(ctx, res, page.Reported(), len(page.List))
	return mirrorRecords(ctx, m, res, KindDevice, page.List, MapDevice)
}

func (m *Manager) syncOrganizations(ctx context.Context, cred Credential, res *StageResult) error {
	var items []json.RawMessage
	err := m.fetch(ctx, func() error {
		var err error
		items, err = m.api.GetOrganizations(ctx, cred.Token)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch organizations: %w", err)
	}

	res.Fetched = len(items)
	logging.Ctx(ctx).Info().Str("stage", res.Name).Int("count", res.Fetched).Msg("Fetched organizations")
	return mirrorRecords(ctx, m, res, KindOrganization, items, MapOrganization)
}

func (m *Manager) syncAlarms(ctx context.Context, cred Credential, res *StageResult) error {
	end := m.now()
	start := end.Add(-m.cfg.Sync.AlarmWindow)

	var page *epcloud.ListPage
	err := m.fetch(ctx, func() error {
		var err error
		page, err = m.api.GetAlarmHistory(ctx, cred.Token, start, end)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch alarm history: %w", err)
	}

	res.Fetched = len(page.List)
	logging.Ctx(ctx).Info().Str("stage", res.Name).Int("count", res.Fetched).Msg("Fetched alarms")
	noteTruncation(ctx, res, page.Reported(), len(page.List))
	return mirrorRecords(ctx, m, res, KindAlarm, page.List, MapAlarm)
}

// isCancellation reports whether err comes from the cycle context ending.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
