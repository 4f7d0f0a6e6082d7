// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

// Package validation wraps go-playground/validator with a process-wide
// singleton and readable error messages.
//
// Field names in messages come from the koanf tag (configuration structs) or
// the query tag (HTTP query parameter structs), so an operator sees
// "app_key is required" rather than a Go field name.
//
//	if verr := validation.ValidateStruct(cfg); verr != nil {
//	    return fmt.Errorf("invalid configuration: %w", verr)
//	}
package validation
