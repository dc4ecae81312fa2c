package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"

	"github.com/google/uuid"
)

// Type names the kind of change an event describes
type Type string

const (
	ExpenseCreated Type = "expense.created"
	ExpenseUpdated Type = "expense.updated"
	ExpenseDeleted Type = "expense.deleted"
)

func (t Type) Valid() bool {
	switch t {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
		return true
	}
	return false
}

// Event is published after a successful write to the store.
// For deletions only Expense.ID is meaningful.
type Event struct {
	ID        string       `json:"id"`
	Type      Type         `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Expense   core.Expense `json:"expense"`
}

func New(t Type, e core.Expense) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Expense:   e,
	}
}

// Deleted builds a deletion event carrying only the id
func Deleted(id int64) Event {
	return New(ExpenseDeleted, core.Expense{ID: id})
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an event and rejects unknown types
func Decode(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if !evt.Type.Valid() {
		return Event{}, fmt.Errorf("unknown event type %q", evt.Type)
	}
	if evt.Expense.ID <= 0 {
		return Event{}, fmt.Errorf("event %s has no expense id", evt.ID)
	}
	return evt, nil
}

// Handler processes one delivered event. A non-nil error leaves the
// event for redelivery.
type Handler func(ctx context.Context, evt Event) error

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Subscriber delivers events to a handler until ctx is cancelled
type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

// NopPublisher drops every event. Used when no event backend is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
