// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package models defines the data structures shared across Solarguardian.

Model Categories:

 1. Remote API models (subpackage epcloud):
    - Envelope, ListPage, GatewayPage: response wrappers of the EPEver open API
    - PowerStation, Gateway, Device, Organization, Variable, Sample, Alarm
    - Request bodies for every endpoint

 2. Read API models (this package):
    - APIResponse: standard response wrapper
    - APIError: structured error details
    - Health, NodeList, StateList: payloads of the read endpoints

All JSON encoding goes through github.com/goccy/go-json.
*/
package models
