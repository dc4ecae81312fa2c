package backend

import (
	"fmt"

	"expensetracker/internal/config"
	"expensetracker/internal/storage"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	eventsBackend := EventsBackend(appConfig.EventsBackend)
	if eventsBackend == "" {
		eventsBackend = EventsNone
	}

	cfg := Config{
		StoreDriver:  storage.Driver(appConfig.StoreDriver),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,

		Events: eventsBackend,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		RedisStream:   appConfig.RedisStream,
		RedisGroup:    appConfig.RedisGroup,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.StoreDriver {
	case storage.DriverSQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite store")
		}
	case storage.DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres store")
		}
	default:
		return fmt.Errorf("invalid store driver: %s", c.StoreDriver)
	}

	if !c.Events.IsValid() {
		return fmt.Errorf("invalid events backend: %s", c.Events)
	}

	switch c.Events {
	case EventsAMQP:
		if c.AMQPURL == "" || c.AMQPExchange == "" || c.AMQPQueue == "" {
			return fmt.Errorf("AMQP URL, exchange and queue are required for amqp events")
		}
	case EventsRedis:
		if c.RedisAddr == "" || c.RedisStream == "" {
			return fmt.Errorf("redis address and stream are required for redis events")
		}
	}

	return nil
}

// GetEventsBackends returns all valid events backends
func GetEventsBackends() []EventsBackend {
	return []EventsBackend{EventsNone, EventsAMQP, EventsRedis}
}
