package backend

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/events"
	"expensetracker/internal/log"
	"expensetracker/internal/redisstream"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
)

// Factory opens the store and event transport described by a Config
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open connects the store and the publisher. A publisher that cannot
// connect is replaced by a no-op so the API keeps serving writes.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLiteDBPath,
		DatabaseURL: cfg.DatabaseURL,
		Logger:      f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.StoreDriver, err)
	}

	publisher, err := f.newPublisher(ctx, cfg)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize event publisher, continuing without events",
			"events_backend", cfg.Events,
			log.FieldError, err)
		publisher = events.NopPublisher{}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"store_driver", cfg.StoreDriver,
		"events_backend", cfg.Events)

	return &Result{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			return errors.Join(publisher.Close(), store.Close())
		},
	}, nil
}

func (f *Factory) newPublisher(ctx context.Context, cfg Config) (events.Publisher, error) {
	switch cfg.Events {
	case EventsAMQP:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			return nil, err
		}
		f.logger.InfoContext(ctx, "Initialized AMQP publisher",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		return client, nil
	case EventsRedis:
		client, err := redisstream.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		f.logger.InfoContext(ctx, "Initialized redis stream publisher", "stream", cfg.RedisStream)
		return redisstream.NewPublisher(client, cfg.RedisStream, redisstream.WithMaxLen(10000)), nil
	default:
		return events.NopPublisher{}, nil
	}
}

// NewSubscriber connects the consumer side of the configured transport.
// Unlike the publisher there is no fallback: a worker without events has
// nothing to do.
func (f *Factory) NewSubscriber(ctx context.Context, cfg Config, consumer string) (events.Subscriber, error) {
	switch cfg.Events {
	case EventsAMQP:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP subscriber: %w", err)
		}
		return client, nil
	case EventsRedis:
		if cfg.RedisGroup == "" {
			return nil, errors.New("redis consumer group is required")
		}
		client, err := redisstream.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis subscriber: %w", err)
		}
		return redisstream.NewSubscriber(client, redisstream.SubscriberConfig{
			Group:    cfg.RedisGroup,
			Consumer: consumer,
			Stream:   cfg.RedisStream,
			Logger:   f.logger,
		}), nil
	default:
		return nil, fmt.Errorf("events backend %q has no subscriber", cfg.Events)
	}
}

// NewMirror returns the Google Sheets mirror when a spreadsheet is
// configured and an in-memory mirror otherwise.
func (f *Factory) NewMirror(ctx context.Context, cfg Config) (sheets.Mirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		f.logger.WarnContext(ctx, "No spreadsheet configured, mirroring to memory")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		Logger:             f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
	}
	return client, nil
}
