package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Mirror is a read-only copy of the expense table kept outside the store.
// Implementations key rows by expense id.
type Mirror interface {
	// Upsert overwrites the row for e.ID or appends a new one.
	Upsert(ctx context.Context, e core.Expense) error
	// Remove drops the row for id. Removing an unknown id is not an error.
	Remove(ctx context.Context, id int64) error
	// Replace discards every row and writes expenses in order.
	Replace(ctx context.Context, expenses []core.Expense) error
}
