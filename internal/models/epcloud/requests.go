// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package epcloud

import "time"

// Endpoint paths, relative to the API base URL.
const (
	EndpointAuthToken         = "/epCloud/user/getAuthToken"
	EndpointPowerStations     = "/epCloud/vn/openApi/getPowerStationListPage"
	EndpointGateways          = "/epCloud/vn/openApi/getDevs"
	EndpointDevices           = "/epCloud/vn/openApi/getEquipmentList"
	EndpointOrganizations     = "/epCloud/vn/openApi/queryOrganizationList"
	EndpointEquipment         = "/epCloud/vn/openApi/getEquipment"
	EndpointDataPointHistory  = "/epCloud/vn/openApi/getDeviceDataPointHistory"
	EndpointAlarmHistory      = "/epCloud/vn/openApi/getAlarmHistory"
	HeaderAccessToken         = "X-Access-Token"
	DefaultPageSize           = 100
	historyTimeSortDescending = "desc"
)

// AuthRequest is the body of getAuthToken.
type AuthRequest struct {
	AppKey    string `json:"appKey"`
	AppSecret string `json:"appSecret"`
}

// PowerStationListRequest is the body of getPowerStationListPage.
type PowerStationListRequest struct {
	PowerStationName string `json:"powerStationName"`
	PageNo           int    `json:"pageNo"`
	PageSize         int    `json:"pageSize"`
}

// PageParam is the offset/limit pagination of getDevs.
type PageParam struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// GatewayListRequest is the body of getDevs.
type GatewayListRequest struct {
	SearchParam          string    `json:"search_param"`
	SearchByDeviceStatus string    `json:"searchByDeviceStatus"`
	PageParam            PageParam `json:"page_param"`
}

// EquipmentListRequest is the body of getEquipmentList.
type EquipmentListRequest struct {
	EquipmentName string `json:"equipmentName"`
	PageNo        int    `json:"pageNo"`
	PageSize      int    `json:"pageSize"`
}

// OrganizationListRequest is the body of queryOrganizationList.
type OrganizationListRequest struct {
	IsTree int `json:"isTree"`
}

// EquipmentRequest is the body of getEquipment.
type EquipmentRequest struct {
	ID FlexID `json:"id"`
}

// DevDatapoints addresses one parameter of one device on its gateway.
type DevDatapoints struct {
	DeviceNo    FlexID `json:"deviceNo"`
	SlaveIndex  Value  `json:"slaveIndex"`
	ItemID      Value  `json:"itemId"`
	DataPointID FlexID `json:"dataPointId"`
}

// DataPointHistoryRequest is the body of getDeviceDataPointHistory.
// Start and End are Unix epoch milliseconds.
type DataPointHistoryRequest struct {
	DevDatapoints DevDatapoints `json:"devDatapoints"`
	Start         int64         `json:"start"`
	End           int64         `json:"end"`
	PageNo        int           `json:"pageNo"`
	PageSize      int           `json:"pageSize"`
	TimeSort      string        `json:"timeSort"`
}

// LatestSampleRequest asks for the single most recent sample of a parameter
// between start and end.
func LatestSampleRequest(device Device, v Variable, start, end time.Time) DataPointHistoryRequest {
	return DataPointHistoryRequest{
		DevDatapoints: DevDatapoints{
			DeviceNo:    device.GatewayID,
			SlaveIndex:  device.TrafficStationNo,
			ItemID:      v.ItemID,
			DataPointID: v.DataPointID,
		},
		Start:    start.UnixMilli(),
		End:      end.UnixMilli(),
		PageNo:   1,
		PageSize: 1,
		TimeSort: historyTimeSortDescending,
	}
}

// AlarmHistoryRequest is the body of getAlarmHistory. TimeStart and TimeEnd
// are Unix epoch milliseconds.
type AlarmHistoryRequest struct {
	PageNo    int   `json:"pageNo"`
	PageSize  int   `json:"pageSize"`
	TimeStart int64 `json:"timeStart"`
	TimeEnd   int64 `json:"timeEnd"`
}
