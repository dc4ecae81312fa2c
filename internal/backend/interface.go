package backend

import (
	"expensetracker/internal/events"
	"expensetracker/internal/storage"
)

// CleanupFunc releases resources acquired by the factory
type CleanupFunc func() error

// Result contains the opened store, the event publisher and a cleanup
// function that closes both
type Result struct {
	Store     *storage.Repository
	Publisher events.Publisher
	Cleanup   CleanupFunc
}

// Config holds what the factory needs to open backends
type Config struct {
	StoreDriver  storage.Driver
	SQLiteDBPath string
	DatabaseURL  string

	Events EventsBackend

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisGroup    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// EventsBackend selects how change events travel
type EventsBackend string

const (
	EventsNone  EventsBackend = "none"
	EventsAMQP  EventsBackend = "amqp"
	EventsRedis EventsBackend = "redis"
)

func (eb EventsBackend) String() string {
	return string(eb)
}

func (eb EventsBackend) IsValid() bool {
	switch eb {
	case EventsNone, EventsAMQP, EventsRedis:
		return true
	default:
		return false
	}
}
