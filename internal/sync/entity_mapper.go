// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/models/epcloud"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// Root segments of the mirrored tree.
const (
	RootPowerStations = "powerStations"
	RootGateways      = "gateways"
	RootDevices       = "devices"
	RootOrganizations = "organizations"
	RootAlarms        = "alarms"
	segmentParameters = "parameters"
)

// PlaceholderValue is written as a parameter value when no sample resolved.
const PlaceholderValue = "N/A"

// Entity kinds, used in MappingError and metric labels.
const (
	KindPowerStation = "power_station"
	KindGateway      = "gateway"
	KindDevice       = "device"
	KindOrganization = "organization"
	KindParameter    = "parameter"
	KindAlarm        = "alarm"
)

// decodeRecord decodes one list element. A failure is a *MappingError so the
// caller skips only this record.
func decodeRecord[T any](kind string, raw json.RawMessage) (T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, &MappingError{Kind: kind, Field: "record", Err: err}
	}
	return rec, nil
}

func requireID(kind, field string, id epcloud.FlexID) error {
	if id.IsZero() {
		return &MappingError{Kind: kind, Field: field}
	}
	return nil
}

// PowerStationPath returns the container path of a station.
func PowerStationPath(id epcloud.FlexID) tree.Path {
	return tree.Join(RootPowerStations, id.String())
}

// GatewayPath returns the container path of a gateway.
func GatewayPath(id epcloud.FlexID) tree.Path {
	return tree.Join(RootGateways, id.String())
}

// DevicePath returns the container path of a device.
func DevicePath(id epcloud.FlexID) tree.Path {
	return tree.Join(RootDevices, id.String())
}

// OrganizationPath returns the container path of an organization.
func OrganizationPath(id epcloud.FlexID) tree.Path {
	return tree.Join(RootOrganizations, id.String())
}

// ParameterPath returns the channel path of one device parameter.
func ParameterPath(deviceID, dataPointID epcloud.FlexID) tree.Path {
	return tree.Join(RootDevices, deviceID.String(), segmentParameters, dataPointID.String())
}

// AlarmPath returns the state path of an alarm.
func AlarmPath(hid epcloud.FlexID) tree.Path {
	return tree.Join(RootAlarms, hid.String())
}

// MapPowerStation maps a station to its container and leaves.
func MapPowerStation(s epcloud.PowerStation) ([]tree.Write, error) {
	if err := requireID(KindPowerStation, "id", s.ID); err != nil {
		return nil, err
	}
	base := PowerStationPath(s.ID)
	return []tree.Write{
		tree.Create(base, tree.KindDevice, s.PowerStationName),
		tree.Set(base.Child("name"), s.PowerStationName),
		tree.Set(base.Child("alarmStatus"), s.AlarmStatus.Int64()),
		tree.Set(base.Child("equipmentCount"), s.EquipmentCount.Int64()),
		tree.Set(base.Child("equipmentOnlineCount"), s.EquipmentOnlineCount.Int64()),
	}, nil
}

// MapGateway maps a gateway. The serial number is mirrored as "sn".
func MapGateway(g epcloud.Gateway) ([]tree.Write, error) {
	if err := requireID(KindGateway, "id", g.ID); err != nil {
		return nil, err
	}
	base := GatewayPath(g.ID)
	return []tree.Write{
		tree.Create(base, tree.KindDevice, g.Name),
		tree.Set(base.Child("name"), g.Name),
		tree.Set(base.Child("sn"), g.DevID),
		tree.Set(base.Child("onlineStatus"), g.OnlineStatus.Int64()),
		tree.Set(base.Child("powerStationName"), g.PowerStationName),
	}, nil
}

// MapDevice maps a device.
func MapDevice(d epcloud.Device) ([]tree.Write, error) {
	if err := requireID(KindDevice, "id", d.ID); err != nil {
		return nil, err
	}
	base := DevicePath(d.ID)
	return []tree.Write{
		tree.Create(base, tree.KindDevice, d.EquipmentName),
		tree.Set(base.Child("name"), d.EquipmentName),
		tree.Set(base.Child("serialNumber"), d.EquipmentNo),
		tree.Set(base.Child("status"), d.Status.Int64()),
		tree.Set(base.Child("powerStationId"), d.PowerStationID.String()),
		tree.Set(base.Child("gatewayId"), d.GatewayID.String()),
	}, nil
}

// MapOrganization maps an organization to a folder. A missing parent is 0.
func MapOrganization(o epcloud.Organization) ([]tree.Write, error) {
	if err := requireID(KindOrganization, "id", o.ID); err != nil {
		return nil, err
	}
	base := OrganizationPath(o.ID)
	return []tree.Write{
		tree.Create(base, tree.KindFolder, o.ProjectName),
		tree.Set(base.Child("name"), o.ProjectName),
		tree.Set(base.Child("level"), o.Level.Int64()),
		tree.Set(base.Child("parentId"), o.ParentID.Int64()),
	}, nil
}

// MapParameter maps the descriptor of one device parameter. A missing unit
// is written as "".
func MapParameter(deviceID epcloud.FlexID, v epcloud.Variable) ([]tree.Write, error) {
	if err := requireID(KindParameter, "deviceId", deviceID); err != nil {
		return nil, err
	}
	if err := requireID(KindParameter, "dataPointId", v.DataPointID); err != nil {
		return nil, err
	}
	base := ParameterPath(deviceID, v.DataPointID)
	return []tree.Write{
		tree.Create(base, tree.KindChannel, v.VariableNameC),
		tree.Set(base.Child("name"), v.VariableNameC),
		tree.Set(base.Child("unit"), v.Unit),
	}, nil
}

// MapParameterSample maps the latest sample of a parameter. A nil sample, or
// one without a value, yields the "N/A" placeholder and an empty timestamp.
func MapParameterSample(deviceID, dataPointID epcloud.FlexID, sample *epcloud.Sample) ([]tree.Write, error) {
	if err := requireID(KindParameter, "deviceId", deviceID); err != nil {
		return nil, err
	}
	if err := requireID(KindParameter, "dataPointId", dataPointID); err != nil {
		return nil, err
	}

	var s epcloud.Sample
	if sample != nil {
		s = *sample
	}
	value, err := s.Value.Or(PlaceholderValue)
	if err != nil {
		return nil, &MappingError{Kind: KindParameter, Field: "value", Err: err}
	}
	timestamp, err := s.Time.Or("")
	if err != nil {
		return nil, &MappingError{Kind: KindParameter, Field: "time", Err: err}
	}

	base := ParameterPath(deviceID, dataPointID)
	return []tree.Write{
		tree.Set(base.Child("value"), value),
		tree.Set(base.Child("timestamp"), timestamp),
	}, nil
}

// MapAlarm maps an alarm, keyed by its history id.
func MapAlarm(a epcloud.Alarm) ([]tree.Write, error) {
	if err := requireID(KindAlarm, "hid", a.HID); err != nil {
		return nil, err
	}
	createTime, err := a.CreateTime.Or("")
	if err != nil {
		return nil, &MappingError{Kind: KindAlarm, Field: "createTime", Err: err}
	}
	base := AlarmPath(a.HID)
	return []tree.Write{
		tree.Create(base, tree.KindState, a.Content),
		tree.Set(base.Child("content"), a.Content),
		tree.Set(base.Child("deviceName"), a.DeviceName),
		tree.Set(base.Child("createTime"), createTime),
		tree.Set(base.Child("status"), a.Status.Int64()),
	}, nil
}
