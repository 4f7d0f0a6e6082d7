// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package supervisor provides the suture v4 process supervision tree.

# Architecture

	solarguardian (root)
	├── data-layer
	│   └── TreeGCService        Badger value log GC
	├── sync-layer
	│   └── SyncService          sync.Manager Start/Stop
	├── events-layer
	│   └── EventsService        embedded NATS and events.Publisher
	└── api-layer
	    └── HTTPServerService    chi read API

Services live in the services subpackage. A layer restarts its own services
with suture's failure counter: each failure increments it, the counter
decays over FailureDecay seconds, and above FailureThreshold restarts wait
FailureBackoff.

A service that returns suture.ErrDoNotRestart is removed and not restarted.
SyncService does this after an authentication failure, EventsService after
the tree store closes its change stream.

# Logging

Supervisor events (service panics, failures, backoff, unstopped services)
are logged through sutureslog on the slog logger given to NewSupervisorTree,
which main bridges to zerolog with logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh
*/
package supervisor
