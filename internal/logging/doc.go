// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

// Package logging provides the zerolog-based structured logging used across
// Solarguardian.
//
// A single global logger is configured once at startup from the logging
// section of the configuration and is then shared by every component.
// Components derive child loggers with WithComponent, and code running inside
// a synchronization cycle or an HTTP request logs through Ctx so the cycle ID
// and request ID are attached automatically.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("base_url", cfg.BaseURL).Msg("Starting sync engine")
//
//	ctx = logging.ContextWithCycleID(ctx, logging.GenerateCycleID())
//	logging.Ctx(ctx).Warn().Err(err).Str("stage", "gateways").Msg("Stage failed")
//
// # Adapters
//
// Third-party libraries that bring their own logger abstractions are bridged
// onto the same zerolog output:
//
//   - NewSlogLogger for sutureslog (supervisor events)
//   - NewBadgerLogger for the Badger tree store
//   - NewWatermillLogger for the NATS change publisher
//
// # Secrets
//
// Credentials never appear in log output in clear text. Use SanitizeToken
// for the bearer token and SanitizeSecret for the app key and secret.
package logging
