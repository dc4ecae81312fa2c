package services

import (
	"context"
	"sync/atomic"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/log"
)

// ExpenseStore is the persistence the service needs
type ExpenseStore interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	TotalAmount(ctx context.Context) (float64, error)
	CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error)
}

// ExpenseService validates writes, runs them against the store and
// announces successful changes on the event bus.
type ExpenseService struct {
	store     ExpenseStore
	publisher events.Publisher
	logger    *log.Logger

	created atomic.Int64
	updated atomic.Int64
	deleted atomic.Int64
}

// Stats counts successful writes since start
type Stats struct {
	Created int64
	Updated int64
	Deleted int64
}

// NewExpenseService builds the service. A nil publisher disables events.
func NewExpenseService(store ExpenseStore, publisher events.Publisher, logger *log.Logger) *ExpenseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentExpense),
	}
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

// CreateExpense stores a new expense and returns it with its assigned id.
// Missing required fields are rejected before the store is touched.
func (s *ExpenseService) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, in.ToExpense(0))
	if err != nil {
		return core.Expense{}, err
	}
	s.created.Add(1)

	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithOperation(log.OpCreate).WithExpense(created.ID, created.Category, created.Amount).ToSlice()...)
	s.publish(ctx, events.New(events.ExpenseCreated, created))

	return created, nil
}

// UpdateExpense overwrites every field of an existing expense. It never
// creates a record; an unknown id yields core.ErrNotFound.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	e := in.ToExpense(id)
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	s.updated.Add(1)

	s.logger.InfoContext(ctx, "Expense updated",
		log.NewFields().WithOperation(log.OpUpdate).WithExpense(e.ID, e.Category, e.Amount).ToSlice()...)
	s.publish(ctx, events.New(events.ExpenseUpdated, e))

	return e, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.deleted.Add(1)

	s.logger.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
	s.publish(ctx, events.Deleted(id))

	return nil
}

// TotalExpense is the sum of all amounts, 0 for an empty store.
func (s *ExpenseService) TotalExpense(ctx context.Context) (core.TotalSummary, error) {
	total, err := s.store.TotalAmount(ctx)
	if err != nil {
		return core.TotalSummary{}, err
	}
	return core.TotalSummary{TotalExpense: total}, nil
}

func (s *ExpenseService) ExpensesByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	totals, err := s.store.CategoryTotals(ctx)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	return totals, nil
}

func (s *ExpenseService) Stats() Stats {
	return Stats{
		Created: s.created.Load(),
		Updated: s.updated.Load(),
		Deleted: s.deleted.Load(),
	}
}

// publish never fails the caller: the write already succeeded
func (s *ExpenseService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldEventID, evt.ID,
			log.FieldEventType, evt.Type,
			log.FieldExpenseID, evt.Expense.ID,
			log.FieldError, err)
	}
}
