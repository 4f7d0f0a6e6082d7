// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/models/epcloud"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// mockEPCloudClient implements EPCloudAPI with overridable func fields. A nil
// field answers with an empty successful payload.
type mockEPCloudClient struct {
	getAuthToken        func(ctx context.Context, appKey, appSecret string) (string, error)
	getPowerStations    func(ctx context.Context, token string) (*epcloud.ListPage, error)
	getGateways         func(ctx context.Context, token string) (*epcloud.GatewayPage, error)
	getDevices          func(ctx context.Context, token string) (*epcloud.ListPage, error)
	getOrganizations    func(ctx context.Context, token string) ([]json.RawMessage, error)
	getEquipment        func(ctx context.Context, token string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error)
	getDataPointHistory func(ctx context.Context, token string, query epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error)
	getAlarmHistory     func(ctx context.Context, token string, start, end time.Time) (*epcloud.ListPage, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *mockEPCloudClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *mockEPCloudClient) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockEPCloudClient) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockEPCloudClient) GetAuthToken(ctx context.Context, appKey, appSecret string) (string, error) {
	m.record("GetAuthToken")
	if m.getAuthToken != nil {
		return m.getAuthToken(ctx, appKey, appSecret)
	}
	return "test-token-0123456789", nil
}

func (m *mockEPCloudClient) GetPowerStations(ctx context.Context, token string) (*epcloud.ListPage, error) {
	m.record("GetPowerStations")
	if m.getPowerStations != nil {
		return m.getPowerStations(ctx, token)
	}
	return &epcloud.ListPage{}, nil
}

func (m *mockEPCloudClient) GetGateways(ctx context.Context, token string) (*epcloud.GatewayPage, error) {
	m.record("GetGateways")
	if m.getGateways != nil {
		return m.getGateways(ctx, token)
	}
	return &epcloud.GatewayPage{}, nil
}

func (m *mockEPCloudClient) GetDevices(ctx context.Context, token string) (*epcloud.ListPage, error) {
	m.record("GetDevices")
	if m.getDevices != nil {
		return m.getDevices(ctx, token)
	}
	return &epcloud.ListPage{}, nil
}

func (m *mockEPCloudClient) GetOrganizations(ctx context.Context, token string) ([]json.RawMessage, error) {
	m.record("GetOrganizations")
	if m.getOrganizations != nil {
		return m.getOrganizations(ctx, token)
	}
	return nil, nil
}

func (m *mockEPCloudClient) GetEquipment(ctx context.Context, token string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error) {
	m.record("GetEquipment")
	if m.getEquipment != nil {
		return m.getEquipment(ctx, token, id)
	}
	return &epcloud.EquipmentDetail{}, nil
}

func (m *mockEPCloudClient) GetDataPointHistory(ctx context.Context, token string, query epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error) {
	m.record("GetDataPointHistory")
	if m.getDataPointHistory != nil {
		return m.getDataPointHistory(ctx, token, query)
	}
	return nil, nil
}

func (m *mockEPCloudClient) GetAlarmHistory(ctx context.Context, token string, start, end time.Time) (*epcloud.ListPage, error) {
	m.record("GetAlarmHistory")
	if m.getAlarmHistory != nil {
		return m.getAlarmHistory(ctx, token, start, end)
	}
	return &epcloud.ListPage{}, nil
}

// newTestConfig returns a configuration with fast retries and an interval
// long enough that only explicit cycles run during a test.
func newTestConfig() *config.Config {
	return &config.Config{
		Solarguardian: config.SolarguardianConfig{
			BaseURL:           "http://127.0.0.1:1",
			AppKey:            "test-app-key",
			AppSecret:         "test-app-secret",
			PollIntervalMs:    int(time.Hour / time.Millisecond),
			RequestTimeout:    5 * time.Second,
			RequestsPerSecond: 1000,
		},
		Sync: config.SyncConfig{
			RetryAttempts: 2,
			RetryDelay:    time.Millisecond,
			HistoryWindow: 24 * time.Hour,
			AlarmWindow:   7 * 24 * time.Hour,
		},
	}
}

func newTestStore(t *testing.T) *tree.BadgerStore {
	t.Helper()
	store, err := tree.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestManager(t *testing.T, api EPCloudAPI) (*Manager, *tree.BadgerStore) {
	t.Helper()
	store := newTestStore(t)
	return NewManager(api, store, newTestConfig()), store
}

// rawList turns JSON object literals into list payload elements.
func rawList(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func listPage(items ...string) *epcloud.ListPage {
	return &epcloud.ListPage{List: rawList(items...)}
}

// fullMock answers every endpoint with a small consistent fleet: one station,
// one gateway, two devices, one organization, two parameters on device 10
// and one alarm.
func fullMock() *mockEPCloudClient {
	return &mockEPCloudClient{
		getPowerStations: func(context.Context, string) (*epcloud.ListPage, error) {
			return listPage(`{"id": 1, "powerStationName": "Farm", "alarmStatus": 0, "equipmentCount": 2, "equipmentOnlineCount": 1}`), nil
		},
		getGateways: func(context.Context, string) (*epcloud.GatewayPage, error) {
			return &epcloud.GatewayPage{Dev: rawList(`{"id": 5, "name": "GW", "devid": "SN-5", "onlineStatus": 1, "powerStationName": "Farm"}`)}, nil
		},
		getDevices: func(context.Context, string) (*epcloud.ListPage, error) {
			return listPage(
				`{"id": 10, "equipmentName": "Charger", "equipmentNo": "EQ-10", "status": 1, "powerStationId": 1, "gatewayId": "GW5", "trafficStationNo": 1}`,
				`{"id": 11, "equipmentName": "Inverter", "equipmentNo": "EQ-11", "status": 0, "powerStationId": 1, "gatewayId": "GW5", "trafficStationNo": 2}`,
			), nil
		},
		getOrganizations: func(context.Context, string) ([]json.RawMessage, error) {
			return rawList(`{"id": 3, "projectName": "Root", "level": 1}`), nil
		},
		getEquipment: func(_ context.Context, _ string, id epcloud.FlexID) (*epcloud.EquipmentDetail, error) {
			if id != "10" {
				return &epcloud.EquipmentDetail{}, nil
			}
			return &epcloud.EquipmentDetail{VariableGroupList: []epcloud.VariableGroup{{
				VariableList: rawList(
					`{"dataPointId": 901, "variableNameC": "PV voltage", "unit": "V", "itemId": 1}`,
					`{"dataPointId": 902, "variableNameC": "Load state", "itemId": 2}`,
				),
			}}}, nil
		},
		getDataPointHistory: func(_ context.Context, _ string, q epcloud.DataPointHistoryRequest) ([]epcloud.Sample, error) {
			if q.DevDatapoints.DataPointID == "901" {
				return []epcloud.Sample{{Value: epcloud.Value(`12.5`), Time: epcloud.Value(`"2026-03-01 10:00:00"`)}}, nil
			}
			return nil, nil
		},
		getAlarmHistory: func(context.Context, string, time.Time, time.Time) (*epcloud.ListPage, error) {
			return listPage(`{"hid": 77, "content": "Overvoltage", "deviceName": "Charger", "createTime": "2026-03-01 09:00:00", "status": 1}`), nil
		},
	}
}
