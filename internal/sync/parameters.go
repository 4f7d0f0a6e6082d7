// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/models/epcloud"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// syncParameters mirrors the parameter catalogue of every device together
// with the latest sample of each parameter. The device list is fetched again
// so that the stage does not depend on the devices stage having succeeded.
//
// Failures below the device list only cost the device or parameter involved:
// a parameter whose history lookup fails keeps the "N/A" placeholder.
func (m *Manager) syncParameters(ctx context.Context, cred Credential, res *StageResult) error {
	page, err := m.fetchDevices(ctx, cred)
	if err != nil {
		return err
	}
	noteTruncation(ctx, res, page.Reported(), len(page.List))

	for _, raw := range page.List {
		device, err := decodeRecord[epcloud.Device](KindDevice, raw)
		if err == nil {
			err = requireID(KindDevice, "id", device.ID)
		}
		if err != nil {
			_ = m.writeEntity(ctx, res, KindDevice, nil, err)
			continue
		}
		if err := m.syncDeviceParameters(ctx, cred, device, res); err != nil {
			return err
		}
	}

	logging.Ctx(ctx).Info().
		Str("stage", res.Name).
		Int("devices", len(page.List)).
		Int("parameters", res.Fetched).
		Msg("Fetched device parameters")
	return nil
}

func (m *Manager) syncDeviceParameters(ctx context.Context, cred Credential, device epcloud.Device, res *StageResult) error {
	log := logging.Ctx(ctx).With().Str("stage", res.Name).Str("device_id", device.ID.String()).Logger()

	var detail *epcloud.EquipmentDetail
	err := m.fetch(ctx, func() error {
		var err error
		detail, err = m.api.GetEquipment(ctx, cred.Token, device.ID)
		return err
	})
	if err != nil {
		if isCancellation(ctx, err) {
			return ctx.Err()
		}
		res.Skipped++
		log.Warn().Err(err).Msg("Skipping device: equipment detail unavailable")
		return nil
	}

	for _, group := range detail.VariableGroupList {
		for _, raw := range group.VariableList {
			res.Fetched++
			if err := m.syncParameter(ctx, cred, device, raw, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) syncParameter(ctx context.Context, cred Credential, device epcloud.Device, raw json.RawMessage, res *StageResult) error {
	variable, err := decodeRecord[epcloud.Variable](KindParameter, raw)
	var writes []tree.Write
	if err == nil {
		writes, err = MapParameter(device.ID, variable)
	}
	if err != nil {
		return m.writeEntity(ctx, res, KindParameter, nil, err)
	}

	sample, err := m.latestSample(ctx, cred, device, variable)
	if err != nil {
		if isCancellation(ctx, err) {
			return ctx.Err()
		}
		logging.Ctx(ctx).Debug().Err(err).
			Str("device_id", device.ID.String()).
			Str("data_point_id", variable.DataPointID.String()).
			Msg("History lookup failed, keeping placeholder")
	}

	sampleWrites, err := MapParameterSample(device.ID, variable.DataPointID, sample)
	if err != nil {
		return m.writeEntity(ctx, res, KindParameter, nil, err)
	}
	return m.writeEntity(ctx, res, KindParameter, append(writes, sampleWrites...), nil)
}

// latestSample returns the newest sample in the history window, or nil when
// the window is empty.
func (m *Manager) latestSample(ctx context.Context, cred Credential, device epcloud.Device, variable epcloud.Variable) (*epcloud.Sample, error) {
	end := m.now()
	query := epcloud.LatestSampleRequest(device, variable, end.Add(-m.cfg.Sync.HistoryWindow), end)

	var samples []epcloud.Sample
	err := m.fetch(ctx, func() error {
		var err error
		samples, err = m.api.GetDataPointHistory(ctx, cred.Token, query)
		return err
	})
	if err != nil || len(samples) == 0 {
		return nil, err
	}
	return &samples[0], nil
}
