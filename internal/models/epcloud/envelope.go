// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package epcloud

import "github.com/goccy/go-json"

// StatusOK is the envelope status of a successful call.
const StatusOK = 0

// Envelope is the common response wrapper of every endpoint.
type Envelope struct {
	Status FlexInt         `json:"status"`
	Info   string          `json:"info"`
	Data   json.RawMessage `json:"data"`
}

// OK reports whether the call succeeded at application level.
func (e *Envelope) OK() bool {
	return e.Status == StatusOK
}

// AuthData is the payload of getAuthToken.
type AuthData struct {
	Token string `json:"X-Access-Token"`
}

// ListPage is the payload of the pageNo/pageSize list endpoints
// (power stations, devices, alarms).
type ListPage struct {
	List       []json.RawMessage `json:"list"`
	Total      FlexInt           `json:"total"`
	TotalCount FlexInt           `json:"totalCount"`
}

// Reported returns the server-side total, whichever field carried it.
func (p *ListPage) Reported() int64 {
	if p.TotalCount > 0 {
		return p.TotalCount.Int64()
	}
	return p.Total.Int64()
}

// GatewayPage is the payload of getDevs.
type GatewayPage struct {
	Dev   []json.RawMessage `json:"dev"`
	Total FlexInt           `json:"total"`
}

// EquipmentDetail is the payload of getEquipment.
type EquipmentDetail struct {
	VariableGroupList []VariableGroup `json:"variableGroupList"`
}

// VariableGroup groups the parameters of one device.
type VariableGroup struct {
	VariableList []json.RawMessage `json:"variableList"`
}

// HistorySeries is one element of the getDeviceDataPointHistory payload.
type HistorySeries struct {
	List []Sample `json:"list"`
}
