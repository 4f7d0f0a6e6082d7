// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/events"
	"github.com/tomtom215/solarguardian/internal/logging"
)

// ChangePublisher forwards a change stream until it ends.
type ChangePublisher interface {
	Run(ctx context.Context, src events.ChangeSource) error
	Close() error
}

// Broker is a NATS server owned by the service.
type Broker interface {
	ClientURL() string
	Shutdown(ctx context.Context) error
}

// EventsService publishes tree changes to NATS. With nats.embedded set it
// also runs the broker, so each restart gets a fresh server and connection.
type EventsService struct {
	cfg    *config.NATSConfig
	source events.ChangeSource

	startBroker  func(cfg *config.NATSConfig) (Broker, error)
	newPublisher func(cfg *config.NATSConfig, url string) (ChangePublisher, error)
}

// NewEventsService creates the service over source, usually the tree store.
func NewEventsService(cfg *config.NATSConfig, source events.ChangeSource) *EventsService {
	return &EventsService{
		cfg:    cfg,
		source: source,
		startBroker: func(cfg *config.NATSConfig) (Broker, error) {
			return events.NewEmbeddedServer(cfg)
		},
		newPublisher: func(cfg *config.NATSConfig, url string) (ChangePublisher, error) {
			return events.NewPublisher(cfg, url, logging.NewWatermillLogger())
		},
	}
}

// Serve implements suture.Service.
func (s *EventsService) Serve(ctx context.Context) error {
	url := s.cfg.URL
	if s.cfg.Embedded {
		broker, err := s.startBroker(s.cfg)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := broker.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS shutdown incomplete")
			}
		}()
		url = broker.ClientURL()
	}

	pub, err := s.newPublisher(s.cfg, url)
	if err != nil {
		return fmt.Errorf("create change publisher: %w", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logging.Warn().Err(err).Msg("Change publisher close failed")
		}
	}()

	logging.Info().Str("url", url).Str("prefix", s.cfg.SubjectPrefix).Msg("Change publisher started")
	err = pub.Run(ctx, s.source)
	switch {
	case errors.Is(err, events.ErrSourceClosed):
		logging.Info().Msg("Tree store closed, change publisher finished")
		return suture.ErrDoNotRestart
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return err
}

func (s *EventsService) String() string {
	return "change-publisher"
}
