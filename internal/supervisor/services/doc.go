// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package services provides suture.Service wrappers for Solarguardian components.

Each wrapper translates a component lifecycle into Serve(ctx) and names
itself through fmt.Stringer for supervisor logs:

  - SyncService: sync.Manager Start/Stop. Authentication failures and a
    stopped manager return suture.ErrDoNotRestart.
  - EventsService: optional embedded NATS server plus events.Publisher.Run.
    A closed change stream returns suture.ErrDoNotRestart.
  - HTTPServerService: binds the listener and serves the read API, draining
    connections on shutdown.
  - TreeGCService: periodic Badger value log GC.
*/
package services
