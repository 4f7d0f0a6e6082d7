// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/models/epcloud"
)

// EPCloudAPI is the set of remote calls the pipeline makes. It is implemented
// by EPCloudClient, by CircuitBreakerClient and by test mocks.
//
// List payloads are returned undecoded per element so that one malformed
// record only costs that record.
type EPCloudAPI interface {
	GetAuthToken(ctx context.Context, appKey, appSecret string) (string, error)
	GetPowerStations(ctx context.Context, token string) (*epcloud.ListPage, error)
	GetGateways(ctx context.Context, token string) (*epcloud.GatewayPage, error)
	GetDevices(ctx context.Context, token string) (*epcloud.ListPage, error)
	GetOrganizations(ctx context.Context, token string) ([]json.RawMessage, error)
	GetEquipment(ctx context.Context, token string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error)
	GetDataPointHistory(ctx context.Context, token string, query epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error)
	GetAlarmHistory(ctx context.Context, token string, start, end time.Time) (*epcloud.ListPage, error)
}

var _ EPCloudAPI = (*EPCloudClient)(nil)

// GetAuthToken exchanges the application credentials for an access token.
// An empty token in a successful envelope is returned as "" with no error;
// the credential manager rejects it.
func (c *EPCloudClient) GetAuthToken(ctx context.Context, appKey, appSecret string) (string, error) {
	env, err := c.post(ctx, epcloud.EndpointAuthToken, "", epcloud.AuthRequest{AppKey: appKey, AppSecret: appSecret})
	if err != nil {
		return "", err
	}
	data, err := decodeData[epcloud.AuthData](env, epcloud.EndpointAuthToken)
	if err != nil {
		return "", err
	}
	return data.Token, nil
}

// GetPowerStations returns the first page of power stations.
func (c *EPCloudClient) GetPowerStations(ctx context.Context, token string) (*epcloud.ListPage, error) {
	env, err := c.post(ctx, epcloud.EndpointPowerStations, token, epcloud.PowerStationListRequest{
		PageNo:   1,
		PageSize: epcloud.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	return decodeData[epcloud.ListPage](env, epcloud.EndpointPowerStations)
}

// GetGateways returns the first page of gateways.
func (c *EPCloudClient) GetGateways(ctx context.Context, token string) (*epcloud.GatewayPage, error) {
	env, err := c.post(ctx, epcloud.EndpointGateways, token, epcloud.GatewayListRequest{
		PageParam: epcloud.PageParam{Offset: 0, Limit: epcloud.DefaultPageSize},
	})
	if err != nil {
		return nil, err
	}
	return decodeData[epcloud.GatewayPage](env, epcloud.EndpointGateways)
}

// GetDevices returns the first page of devices.
func (c *EPCloudClient) GetDevices(ctx context.Context, token string) (*epcloud.ListPage, error) {
	env, err := c.post(ctx, epcloud.EndpointDevices, token, epcloud.EquipmentListRequest{
		PageNo:   1,
		PageSize: epcloud.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	return decodeData[epcloud.ListPage](env, epcloud.EndpointDevices)
}

// GetOrganizations returns all organizations. The endpoint is not paginated.
func (c *EPCloudClient) GetOrganizations(ctx context.Context, token string) ([]json.RawMessage, error) {
	env, err := c.post(ctx, epcloud.EndpointOrganizations, token, epcloud.OrganizationListRequest{IsTree: 1})
	if err != nil {
		return nil, err
	}
	list, err := decodeData[[]json.RawMessage](env, epcloud.EndpointOrganizations)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// GetEquipment returns the parameter catalogue of one device.
func (c *EPCloudClient) GetEquipment(ctx context.Context, token string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error) {
	env, err := c.post(ctx, epcloud.EndpointEquipment, token, epcloud.EquipmentRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return decodeData[epcloud.EquipmentDetail](env, epcloud.EndpointEquipment)
}

// GetDataPointHistory returns the samples of the first series in the
// response, newest first when the query asks for descending order.
func (c *EPCloudClient) GetDataPointHistory(ctx context.Context, token string, query epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error) {
	env, err := c.post(ctx, epcloud.EndpointDataPointHistory, token, query)
	if err != nil {
		return nil, err
	}
	series, err := decodeData[[]epcloud.HistorySeries](env, epcloud.EndpointDataPointHistory)
	if err != nil {
		return nil, err
	}
	if len(*series) == 0 {
		return nil, nil
	}
	return (*series)[0].List, nil
}

// GetAlarmHistory returns the first page of alarms raised between start and end.
func (c *EPCloudClient) GetAlarmHistory(ctx context.Context, token string, start, end time.Time) (*epcloud.ListPage, error) {
	env, err := c.post(ctx, epcloud.EndpointAlarmHistory, token, epcloud.AlarmHistoryRequest{
		PageNo:    1,
		PageSize:  epcloud.DefaultPageSize,
		TimeStart: start.UnixMilli(),
		TimeEnd:   end.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	return decodeData[epcloud.ListPage](env, epcloud.EndpointAlarmHistory)
}
