// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/solarguardian/internal/middleware"
	"github.com/tomtom215/solarguardian/internal/models"
)

// Router wires handlers to routes.
type Router struct {
	handler *Handler
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Setup builds the chi route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(h.config.CORSOrigins))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, models.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// Health probes are not rate limited.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitByIP(RateLimitConfig{
			Requests: h.config.RateLimitRequests,
			Window:   h.config.RateLimitWindow,
		}))

		r.Get("/nodes", h.Nodes)
		r.Get("/states", h.States)
		r.Get("/states/{path}", h.State)

		r.Get("/sync/status", h.SyncStatusHandler)
		r.With(rateLimitByIP(RateLimitSync)).Post("/sync", h.TriggerSync)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
