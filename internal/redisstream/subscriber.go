package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/events"
	"expensetracker/internal/log"

	"github.com/redis/go-redis/v9"
)

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	BatchSize     int64
	BlockDuration time.Duration
	Logger        *log.Logger
}

// Subscriber reads a stream through a consumer group. Messages whose
// handler fails are not acknowledged and stay pending for redelivery.
type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	batchSize     int64
	blockDuration time.Duration
	logger        *log.Logger
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(log.DefaultConfig())
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		logger:        config.Logger.WithComponent(log.ComponentRedis),
	}
}

func (s *Subscriber) Subscribe(ctx context.Context, handler events.Handler) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("create consumer group: %w", err)
	}

	s.logger.InfoContext(ctx, "Subscriber started",
		"stream", s.stream,
		"group", s.group,
		"consumer", s.consumer)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Subscriber stopping", "stream", s.stream)
			return ctx.Err()
		default:
		}

		if err := s.readMessages(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.ErrorContext(ctx, "Error reading messages",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeNetwork)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context, handler events.Handler) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := processMessage(ctx, message, handler); err != nil {
				s.logger.ErrorContext(ctx, "Failed to process message", "message_id", message.ID, log.FieldError, err)
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.logger.ErrorContext(ctx, "Failed to ACK message", "message_id", message.ID, log.FieldError, err)
			}
		}
	}

	return nil
}

func processMessage(ctx context.Context, message redis.XMessage, handler events.Handler) error {
	raw, ok := message.Values[eventField].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	evt, err := events.Decode([]byte(raw))
	if err != nil {
		return err
	}

	return handler(ctx, evt)
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func (s *Subscriber) Close() error {
	return s.client.Close()
}
