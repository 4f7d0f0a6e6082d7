// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

// Package events forwards tree changes to NATS.
//
// Every state write in the tree produces a tree.Change. The Publisher turns
// each one into a Watermill message on the subject
//
//	<subject_prefix>.<tree path>
//
// so that a consumer can follow one entity ("solarguardian.state.devices.10.>")
// or the whole fleet ("solarguardian.state.>") with ordinary NATS wildcards.
// Core NATS is used with JetStream disabled: notifications are live only, the
// tree itself is the durable record.
//
// Unchanged writes (same value as before) are skipped unless
// nats.publish_unchanged is set.
//
// # Embedded Broker
//
// With nats.embedded=true an in-process nats-server is started and the
// publisher connects to it. Otherwise nats.url names an external broker.
//
// # Message Format
//
// The payload is the JSON encoding of ChangeEvent. The Watermill message UUID
// is carried in the NATS headers by wmNats.NATSMarshaler.
package events
