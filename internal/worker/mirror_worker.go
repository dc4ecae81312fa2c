package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// ExpenseLister is the read side of the store used for full resyncs
type ExpenseLister interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// MirrorWorker keeps a sheets.Mirror in step with the store. Events keep it
// current between resyncs; resyncs repair anything an event missed.
type MirrorWorker struct {
	mirror sheets.Mirror
	store  ExpenseLister
	logger *log.Logger

	handled atomic.Int64
	resyncs atomic.Int64
}

func NewMirrorWorker(mirror sheets.Mirror, store ExpenseLister, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		mirror: mirror,
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent applies one change event to the mirror. A returned error
// leaves the message for redelivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, evt events.Event) error {
	var err error
	switch evt.Type {
	case events.ExpenseCreated, events.ExpenseUpdated:
		err = w.mirror.Upsert(ctx, evt.Expense)
	case events.ExpenseDeleted:
		err = w.mirror.Remove(ctx, evt.Expense.ID)
	default:
		return fmt.Errorf("unknown event type %q", evt.Type)
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to apply event to mirror",
			log.FieldEventID, evt.ID,
			log.FieldEventType, evt.Type,
			log.FieldExpenseID, evt.Expense.ID,
			log.FieldError, err)
		return fmt.Errorf("apply %s for expense %d: %w", evt.Type, evt.Expense.ID, err)
	}

	w.handled.Add(1)
	w.logger.InfoContext(ctx, "Mirror updated",
		log.FieldEventID, evt.ID,
		log.FieldEventType, evt.Type,
		log.FieldExpenseID, evt.Expense.ID)
	return nil
}

// Resync replaces the mirror with the current contents of the store.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	expenses, err := w.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if err := w.mirror.Replace(ctx, expenses); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}

	w.resyncs.Add(1)
	w.logger.InfoContext(ctx, "Mirror resynced",
		log.FieldOperation, log.OpResync,
		log.FieldCount, len(expenses))
	return nil
}

// Run resyncs once immediately and then on every tick until ctx is done.
// Failed resyncs are logged and retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	w.resyncLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Resync loop stopped", log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			w.resyncLogged(ctx)
		}
	}
}

func (w *MirrorWorker) resyncLogged(ctx context.Context) {
	if err := w.Resync(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Resync failed",
			log.FieldOperation, log.OpResync,
			log.FieldError, err)
	}
}

// Stats returns the number of applied events and completed resyncs
func (w *MirrorWorker) Stats() (handled, resyncs int64) {
	return w.handled.Load(), w.resyncs.Load()
}
