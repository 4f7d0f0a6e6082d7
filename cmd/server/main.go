// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/tree"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggingOptions())

	logging.Info().
		Str("api", cfg.Solarguardian.String()).
		Str("store", storeDescription(&cfg.Store)).
		Bool("nats", cfg.NATS.Enabled).
		Bool("http", cfg.Server.Enabled).
		Msg("Starting Solarguardian")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Solarguardian stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run opens the store, serves the supervisor tree until ctx is canceled and
// closes the store.
func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(&cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing tree store")
		}
	}()

	app, err := buildApp(cfg, store)
	if err != nil {
		return err
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := app.tree.ServeBackground(ctx)

	var serveErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = err
		}
	}

	if unstopped, _ := app.tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	return serveErr
}

func openStore(cfg *config.StoreConfig) (*tree.BadgerStore, error) {
	store, err := tree.OpenWithOptions(tree.Options{Path: cfg.Path, InMemory: cfg.InMemory})
	if err != nil {
		return nil, err
	}
	logging.Info().Str("store", storeDescription(cfg)).Msg("Tree store opened")
	return store, nil
}

func storeDescription(cfg *config.StoreConfig) string {
	if cfg.InMemory {
		return "memory"
	}
	return cfg.Path
}
