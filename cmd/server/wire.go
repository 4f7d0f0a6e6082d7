// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/solarguardian/internal/api"
	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/supervisor"
	"github.com/tomtom215/solarguardian/internal/supervisor/services"
	"github.com/tomtom215/solarguardian/internal/sync"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// app is the wired process, ready to serve.
type app struct {
	tree     *supervisor.SupervisorTree
	manager  *sync.Manager
	services []string
}

// buildApp constructs every component over store and registers the enabled
// services with a new supervisor tree.
func buildApp(cfg *config.Config, store *tree.BadgerStore) (*app, error) {
	st, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, err
	}
	a := &app{tree: st}

	client := sync.NewCircuitBreakerClient(sync.NewEPCloudClient(&cfg.Solarguardian))
	a.manager = sync.NewManager(client, store, cfg)
	a.add(st.AddSyncService, services.NewSyncService(a.manager))

	if cfg.Store.GCInterval > 0 && !cfg.Store.InMemory {
		a.add(st.AddDataService, services.NewTreeGCService(store, cfg.Store.GCInterval))
	}

	if cfg.NATS.Enabled {
		a.add(st.AddEventsService, services.NewEventsService(&cfg.NATS, store))
	}

	if cfg.Server.Enabled {
		handler := api.NewHandler(store, a.manager, &cfg.Server)
		server := newHTTPServer(&cfg.Server, api.NewRouter(handler).Setup())
		a.add(st.AddAPIService, services.NewHTTPServerService(server, cfg.Server.Addr(), 10*time.Second))
	}

	logging.Info().Strs("services", a.services).Msg("Supervisor tree assembled")
	return a, nil
}

type namedService interface {
	suture.Service
	fmt.Stringer
}

func (a *app) add(register func(suture.Service) suture.ServiceToken, svc namedService) {
	register(svc)
	a.services = append(a.services, svc.String())
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}
