// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package sync mirrors the EPEver Solarguardian cloud into the telemetry tree.

Key Components:

  - Manager: lifecycle and scheduling of synchronization cycles
  - CredentialManager: access token acquisition and optional refresh
  - EPCloudClient: JSON-over-POST client with request pacing and HTTP 429 backoff
  - CircuitBreakerClient: sony/gobreaker protection around EPCloudClient
  - Entity mapper: pure functions from API records to tree writes
  - Connectivity: the info.connection flag

Pipeline:

Every cycle runs these stages strictly in order:

 1. stations: getPowerStationListPage -> powerStations.<id>
 2. gateways: getDevs -> gateways.<id>
 3. devices: getEquipmentList -> devices.<id>
 4. organizations: queryOrganizationList -> organizations.<id>
 5. parameters: getEquipmentList, getEquipment and getDeviceDataPointHistory
    -> devices.<id>.parameters.<dataPointId>
 6. alarms: getAlarmHistory -> alarms.<hid>

Only the first page (100 records) of each list is mirrored. A larger
server-side total is logged and counted in
solarguardian_sync_page_truncations_total.

Error Handling:

  - *AuthError: Start fails, the manager stays idle, connectivity is false
  - *StatusError: the remote API answered with a non-zero status; the stage
    is skipped (soft) and the cycle continues
  - any other stage error (transport, decode, open breaker, panic): the
    stage is skipped (hard) and the cycle continues
  - *MappingError: one record is skipped and the stage continues

Usage Example:

	api := sync.NewCircuitBreakerClient(sync.NewEPCloudClient(&cfg.Solarguardian))
	manager := sync.NewManager(api, store, cfg)
	if err := manager.Start(ctx); err != nil {
	    return err
	}
	defer manager.Stop()
*/
package sync
