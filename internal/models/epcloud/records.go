// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package epcloud

// PowerStation is one element of getPowerStationListPage.
type PowerStation struct {
	ID                   FlexID  `json:"id"`
	PowerStationName     string  `json:"powerStationName"`
	AlarmStatus          FlexInt `json:"alarmStatus"`
	EquipmentCount       FlexInt `json:"equipmentCount"`
	EquipmentOnlineCount FlexInt `json:"equipmentOnlineCount"`
}

// Gateway is one element of getDevs.
type Gateway struct {
	ID               FlexID  `json:"id"`
	Name             string  `json:"name"`
	DevID            string  `json:"devid"` // gateway serial number
	OnlineStatus     FlexInt `json:"onlineStatus"`
	PowerStationName string  `json:"powerStationName"`
}

// Device is one element of getEquipmentList. GatewayID and TrafficStationNo
// together address the device on its gateway for history queries.
type Device struct {
	ID               FlexID  `json:"id"`
	EquipmentName    string  `json:"equipmentName"`
	EquipmentNo      string  `json:"equipmentNo"`
	Status           FlexInt `json:"status"`
	PowerStationID   FlexID  `json:"powerStationId"`
	GatewayID        FlexID  `json:"gatewayId"`
	TrafficStationNo Value   `json:"trafficStationNo"`
}

// Organization is one element of queryOrganizationList.
type Organization struct {
	ID          FlexID  `json:"id"`
	ProjectName string  `json:"projectName"`
	Level       FlexInt `json:"level"`
	ParentID    FlexInt `json:"parentId"`
}

// Variable is one measurement parameter of a device.
type Variable struct {
	DataPointID   FlexID `json:"dataPointId"`
	VariableNameC string `json:"variableNameC"`
	Unit          string `json:"unit"`
	ItemID        Value  `json:"itemId"`
}

// Sample is one historical value of a parameter.
type Sample struct {
	Value Value `json:"value"`
	Time  Value `json:"time"`
}

// Alarm is one element of getAlarmHistory.
type Alarm struct {
	HID        FlexID  `json:"hid"`
	Content    string  `json:"content"`
	DeviceName string  `json:"deviceName"`
	CreateTime Value   `json:"createTime"`
	Status     FlexInt `json:"status"`
}
