package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, event Event) error

// errMalformedEntry marks entries that are not an Event envelope, including
// pending entries whose payload was trimmed from the stream.
var errMalformedEntry = errors.New("malformed stream entry")

type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	retryDelay    time.Duration
	retryPending  time.Duration
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	RetryDelay    time.Duration
	// RetryPending is how often entries whose handler failed are redelivered
	// to this consumer.
	RetryPending time.Duration
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RetryPending == 0 {
		config.RetryPending = 30 * time.Second
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		retryDelay:    config.RetryDelay,
		retryPending:  config.RetryPending,
	}
}

// Start consumes the stream until ctx is cancelled. Entries whose handler
// fails are left unacknowledged and handed to the handler again on startup
// and every RetryPending, until it succeeds.
func (s *Subscriber) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log := slog.With("stream", s.stream, "group", s.group, "consumer", s.consumer)
	log.InfoContext(ctx, "subscriber started")

	var lastRetry time.Time
	for {
		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "subscriber stopping")
			return ctx.Err()
		default:
			if time.Since(lastRetry) >= s.retryPending {
				lastRetry = time.Now()
				if err := s.readMessages(ctx, "0", 0); err != nil && ctx.Err() == nil {
					log.WarnContext(ctx, "error retrying pending entries", "error", err)
				}
			}
			if err := s.readMessages(ctx, ">", s.blockDuration); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.ErrorContext(ctx, "error reading stream", "error", err)
				select {
				case <-ctx.Done():
				case <-time.After(s.retryDelay):
				}
			}
		}
	}
}

// readMessages reads new entries when from is ">", or this consumer's
// unacknowledged entries when from is "0".
func (s *Subscriber) readMessages(ctx context.Context, from string, block time.Duration) error {
	args := &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, from},
		Count:    s.batchSize,
		Block:    block,
	}
	if block == 0 {
		args.Block = -1
	}
	streams, err := s.client.XReadGroup(ctx, args).Result()

	if errors.Is(err, redis.Nil) {
		return nil // No messages
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				if !errors.Is(err, errMalformedEntry) {
					slog.WarnContext(ctx, "failed to process stream entry", "stream", s.stream, "id", message.ID, "error", err)
					continue
				}
				// Retrying cannot fix it; acknowledge so it is not redelivered.
				slog.ErrorContext(ctx, "dropping malformed stream entry", "stream", s.stream, "id", message.ID, "error", err)
			}

			// The handler has already applied the entry; ack even if ctx was cancelled meanwhile.
			if err := s.client.XAck(context.WithoutCancel(ctx), s.stream, s.group, message.ID).Err(); err != nil {
				slog.WarnContext(ctx, "failed to ack stream entry", "stream", s.stream, "id", message.ID, "error", err)
			}
		}
	}

	return nil
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("%w: no event field", errMalformedEntry)
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEntry, err)
	}

	return s.handler(ctx, event)
}
