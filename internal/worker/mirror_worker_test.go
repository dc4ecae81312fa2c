package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

type fakeLister struct {
	mu       sync.Mutex
	expenses []core.Expense
	err      error
	calls    int
}

func (f *fakeLister) ListExpenses(context.Context) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.expenses, f.err
}

func (f *fakeLister) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingMirror struct{}

func (failingMirror) Upsert(context.Context, core.Expense) error    { return errors.New("quota exceeded") }
func (failingMirror) Remove(context.Context, int64) error           { return errors.New("quota exceeded") }
func (failingMirror) Replace(context.Context, []core.Expense) error { return errors.New("quota exceeded") }

func TestHandleEvent(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, &fakeLister{}, quietLogger())
	ctx := context.Background()

	steps := []struct {
		evt     events.Event
		wantIDs []int64
	}{
		{events.New(events.ExpenseCreated, core.Expense{ID: 1, Category: "food", Amount: 5}), []int64{1}},
		{events.New(events.ExpenseCreated, core.Expense{ID: 2, Category: "fuel", Amount: 3}), []int64{1, 2}},
		{events.New(events.ExpenseUpdated, core.Expense{ID: 1, Category: "food", Amount: 9}), []int64{1, 2}},
		{events.Deleted(2), []int64{1}},
		{events.Deleted(2), []int64{1}},
	}

	for i, step := range steps {
		if err := w.HandleEvent(ctx, step.evt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		rows := mirror.Rows()
		if len(rows) != len(step.wantIDs) {
			t.Fatalf("step %d: rows = %+v", i, rows)
		}
		for j, id := range step.wantIDs {
			if rows[j].ID != id {
				t.Fatalf("step %d: rows = %+v, want ids %v", i, rows, step.wantIDs)
			}
		}
	}

	if rows := mirror.Rows(); rows[0].Amount != 9 {
		t.Errorf("update not applied: %+v", rows[0])
	}
	if handled, _ := w.Stats(); handled != int64(len(steps)) {
		t.Errorf("handled = %d, want %d", handled, len(steps))
	}
}

func TestHandleEvent_Errors(t *testing.T) {
	ctx := context.Background()

	w := NewMirrorWorker(memory.New(), &fakeLister{}, quietLogger())
	if err := w.HandleEvent(ctx, events.Event{Type: "expense.archived"}); err == nil {
		t.Error("unknown event type should fail")
	}

	w = NewMirrorWorker(failingMirror{}, &fakeLister{}, quietLogger())
	if err := w.HandleEvent(ctx, events.New(events.ExpenseCreated, core.Expense{ID: 1})); err == nil {
		t.Error("mirror failure should be returned so the message is redelivered")
	}
}

func TestResync(t *testing.T) {
	mirror := memory.New()
	ctx := context.Background()
	_ = mirror.Upsert(ctx, core.Expense{ID: 99, Category: "stale"})

	store := &fakeLister{expenses: []core.Expense{{ID: 1}, {ID: 2}}}
	w := NewMirrorWorker(mirror, store, quietLogger())

	if err := w.Resync(ctx); err != nil {
		t.Fatal(err)
	}
	rows := mirror.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 2 {
		t.Fatalf("mirror not replaced: %+v", rows)
	}

	store.err = errors.New("database is locked")
	if err := w.Resync(ctx); err == nil {
		t.Fatal("store error should fail resync")
	}
	if len(mirror.Rows()) != 2 {
		t.Fatal("failed resync must leave the mirror untouched")
	}
}

func TestRun(t *testing.T) {
	store := &fakeLister{expenses: []core.Expense{{ID: 1}}}
	mirror := memory.New()
	w := NewMirrorWorker(mirror, store, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 10*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for store.Calls() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated resyncs, got %d", store.Calls())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if len(mirror.Rows()) != 1 {
		t.Fatalf("mirror rows = %+v", mirror.Rows())
	}
}
