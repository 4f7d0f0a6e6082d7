// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// Metadata keys set on every message.
const (
	MetadataPath    = "path"
	MetadataChanged = "changed"
)

// subscribeBuffer is the change buffer requested from the store. A full
// buffer drops notifications, never tree writes.
const subscribeBuffer = 256

var (
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrSourceClosed is returned by Run when the change source closes its
	// channel, normally because the store was closed.
	ErrSourceClosed = errors.New("change source closed")
)

// ChangeSource is the subscription side of tree.Store.
type ChangeSource interface {
	Subscribe(buffer int) (<-chan tree.Change, func())
}

// Publisher forwards tree changes to a Watermill publisher.
type Publisher struct {
	publisher        message.Publisher
	prefix           string
	publishUnchanged bool

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects to the NATS broker at url.
func NewPublisher(cfg *config.NATSConfig, url string, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("solarguardian"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return NewPublisherWith(pub, cfg), nil
}

// NewPublisherWith wraps an existing Watermill publisher.
func NewPublisherWith(pub message.Publisher, cfg *config.NATSConfig) *Publisher {
	return &Publisher{
		publisher:        pub,
		prefix:           cfg.SubjectPrefix,
		publishUnchanged: cfg.PublishUnchanged,
	}
}

// Publish sends one change. Unchanged writes are counted as skipped and not
// sent unless the publisher was configured to forward them.
func (p *Publisher) Publish(ctx context.Context, change tree.Change) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if !change.Changed && !p.publishUnchanged {
		metrics.EventsPublished.WithLabelValues("skipped").Inc()
		return nil
	}

	payload, err := json.Marshal(NewChangeEvent(change))
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("encode change %s: %w", change.Path, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataPath, change.Path.String())
	msg.Metadata.Set(MetadataChanged, fmt.Sprintf("%t", change.Changed))

	subject := Subject(p.prefix, change.Path)
	if err := p.publisher.Publish(subject, msg); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Run subscribes to src and publishes every change until ctx is done or src
// closes its channel. Publish failures are logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context, src ChangeSource) error {
	log := logging.WithComponent("events")
	changes, cancel := src.Subscribe(subscribeBuffer)
	defer cancel()

	log.Info().Str("prefix", p.prefix).Bool("publish_unchanged", p.publishUnchanged).Msg("Change publisher started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return ErrSourceClosed
			}
			if err := p.Publish(ctx, change); err != nil {
				if errors.Is(err, ErrPublisherClosed) {
					return err
				}
				log.Warn().Err(err).Str("path", change.Path.String()).Msg("Failed to publish change")
			}
		}
	}
}

// Close shuts down the underlying publisher. It is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
