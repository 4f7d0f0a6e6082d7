// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/solarguardian/internal/middleware"
	"github.com/tomtom215/solarguardian/internal/models"
)

// RateLimitConfig defines rate limit parameters for a route group.
type RateLimitConfig struct {
	// Requests is the number of requests allowed in the window. 0 disables
	// limiting.
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
}

// RateLimitSync bounds manual sync triggers, which each cost a full cycle of
// remote calls.
var RateLimitSync = RateLimitConfig{Requests: 10, Window: time.Minute}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}

// rateLimitByIP returns a go-chi/httprate limiter keyed by client IP that
// answers with the standard error envelope.
func rateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return noopMiddleware
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(
		cfg.Requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Rate limit exceeded", nil)
		}),
	)
}

// corsHandler allows read access from the configured browser origins. The API
// is unauthenticated, so credentials are never allowed.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return noopMiddleware
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	})
}
