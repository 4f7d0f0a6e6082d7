// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

// Package epcloud provides data models for the EPEver "Solarguardian" open API.
//
// Every endpoint answers with the same envelope:
//
//	{"status": 0, "info": "success", "data": ...}
//
// A status of 0 means success; any other value carries a human readable
// message in info. The shape of data depends on the endpoint.
//
// # Overview
//
// Requests:
//   - AuthRequest: getAuthToken
//   - PowerStationListRequest: getPowerStationListPage
//   - GatewayListRequest: getDevs
//   - EquipmentListRequest: getEquipmentList
//   - OrganizationListRequest: queryOrganizationList
//   - EquipmentRequest: getEquipment
//   - DataPointHistoryRequest: getDeviceDataPointHistory
//   - AlarmHistoryRequest: getAlarmHistory
//
// Records:
//   - PowerStation, Gateway, Device, Organization
//   - Variable (a device parameter) inside VariableGroup inside EquipmentDetail
//   - HistorySeries and Sample
//   - Alarm
//
// # Loose typing
//
// The API is not consistent about JSON types: identifiers arrive as numbers or
// strings, counters sometimes as numeric strings, and sample values as either.
// FlexID, FlexInt and Value absorb those differences so a single odd field
// does not fail the decode of a whole page.
//
// List payloads keep their elements as json.RawMessage. Each element is
// decoded on its own by the caller so one malformed record only affects
// itself.
package epcloud
