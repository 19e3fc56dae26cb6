// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/metrics"
)

// Supported bus backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Metadata keys set on published messages.
const (
	MetadataOrigin = "origin"
	MetadataScope  = "scope"
)

// Config configures the invalidation bus.
type Config struct {
	Backend string `json:"backend"`
	URL     string `json:"url"`
	Topic   string `json:"topic"`

	// InstanceID identifies this replica. A random id is used when empty.
	InstanceID string `json:"instance_id"`

	MaxReconnects   int           `json:"max_reconnects"`
	ReconnectWait   time.Duration `json:"reconnect_wait"`
	ReconnectBuffer int           `json:"reconnect_buffer"`
	AckWaitTimeout  time.Duration `json:"ack_wait_timeout"`
	CloseTimeout    time.Duration `json:"close_timeout"`

	// OutputBuffer sizes the gochannel subscriber buffer.
	OutputBuffer int64 `json:"output_buffer"`
}

// DefaultConfig returns an in-process bus configuration.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendMemory,
		URL:             natsgo.DefaultURL,
		Topic:           DefaultTopic,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 1 << 20,
		AckWaitTimeout:  30 * time.Second,
		CloseTimeout:    10 * time.Second,
		OutputBuffer:    64,
	}
}

// Bus publishes and subscribes to invalidation events.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closers    []func() error
	config     Config
	mu         sync.RWMutex
	closed     bool
	logger     zerolog.Logger
}

// New creates a bus for cfg.Backend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, logger zerolog.Logger) (*Bus, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryBus(cfg, logger), nil
	case BackendNATS:
		return NewNATSBus(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewMemoryBus creates an in-process bus on a Watermill gochannel. Messages
// published before any subscriber exists are dropped.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoryBus(cfg Config, logger zerolog.Logger) *Bus {
	cfg = withDefaults(cfg)
	cfg.Backend = BackendMemory
	logger = logger.With().Str("component", "events").Str("backend", BackendMemory).Logger()

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, logging.NewWatermillAdapter(logger))

	return &Bus{
		publisher:  pubSub,
		subscriber: pubSub,
		closers:    []func() error{pubSub.Close},
		config:     cfg,
		logger:     logger,
	}
}

// NewNATSBus connects to NATS. Events travel on core NATS subjects without a
// queue group so every replica receives a copy.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewNATSBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	cfg = withDefaults(cfg)
	cfg.Backend = BackendNATS
	logger = logger.With().Str("component", "events").Str("backend", BackendNATS).Logger()
	adapter := logging.NewWatermillAdapter(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOptions(cfg, adapter, "publisher"),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOptions(cfg, adapter, "subscriber"),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, adapter)
	if err != nil {
		pub.Close() //nolint:errcheck
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	logger.Info().Str("url", logging.RedactURL(cfg.URL)).Str("topic", cfg.Topic).Msg("Invalidation bus connected")

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		closers:    []func() error{sub.Close, pub.Close},
		config:     cfg,
		logger:     logger,
	}, nil
}

func natsOptions(cfg Config, logger watermill.LoggerAdapter, role string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("watchnext-" + role + "-" + cfg.InstanceID),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"role": role})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"role": role,
				"url":  logging.RedactURL(nc.ConnectedUrl()),
			})
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			fields := watermill.LogFields{"role": role}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			logger.Error("NATS error", err, fields)
		}),
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = def.ReconnectWait
	}
	if cfg.ReconnectBuffer <= 0 {
		cfg.ReconnectBuffer = def.ReconnectBuffer
	}
	if cfg.AckWaitTimeout <= 0 {
		cfg.AckWaitTimeout = def.AckWaitTimeout
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = def.CloseTimeout
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = def.OutputBuffer
	}
	return cfg
}

// Origin returns this replica's instance id.
func (b *Bus) Origin() string {
	return b.config.InstanceID
}

// Topic returns the subject events are published on.
func (b *Bus) Topic() string {
	return b.config.Topic
}

// Backend returns the configured transport.
func (b *Bus) Backend() string {
	return b.config.Backend
}

// PublishInvalidation announces a fleet-wide cache invalidation.
func (b *Bus) PublishInvalidation(ctx context.Context, reason string) (*InvalidationEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	event := &InvalidationEvent{
		EventID:  watermill.NewUUID(),
		Origin:   b.config.InstanceID,
		Scope:    ScopeAll,
		Reason:   reason,
		IssuedAt: time.Now().UTC(),
	}
	payload, err := event.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal invalidation event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(MetadataOrigin, event.Origin)
	msg.Metadata.Set(MetadataScope, event.Scope)
	msg.SetContext(ctx)

	err = b.publisher.Publish(b.config.Topic, msg)
	metrics.RecordInvalidationPublished(err)
	if err != nil {
		return nil, fmt.Errorf("publish invalidation event: %w", err)
	}

	b.logger.Info().Str("event_id", event.EventID).Str("reason", reason).Msg("Invalidation event published")
	return event, nil
}

// Subscribe returns the stream of raw invalidation messages. The channel is
// closed when ctx ends or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, b.config.Topic)
}

// Close shuts down the transport. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
