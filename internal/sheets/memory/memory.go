package memory

import (
	"context"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

// Mirror keeps rows in process memory. Used when no spreadsheet is
// configured and in tests.
type Mirror struct {
	mu   sync.Mutex
	rows map[int64]core.Expense
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Expense)}
}

func (m *Mirror) Upsert(_ context.Context, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[e.ID] = e
	return nil
}

func (m *Mirror) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *Mirror) Replace(_ context.Context, expenses []core.Expense) error {
	rows := make(map[int64]core.Expense, len(expenses))
	for _, e := range expenses {
		rows[e.ID] = e
	}
	m.mu.Lock()
	m.rows = rows
	m.mu.Unlock()
	return nil
}

// Rows returns a snapshot ordered by id.
func (m *Mirror) Rows() []core.Expense {
	m.mu.Lock()
	out := make([]core.Expense, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
