package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	created, err := repo.CreateExpense(ctx, core.Expense{Date: "2024-01-01", Category: "food", Amount: 12.5, Description: strPtr("lunch")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	list, err = repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Date != "2024-01-01" || got.Category != "food" || got.Amount != 12.5 {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.Description == nil || *got.Description != "lunch" {
		t.Fatalf("unexpected description %v", got.Description)
	}
}

func TestRepository_NullDescription(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.CreateExpense(ctx, core.Expense{Date: "d", Category: "c", Amount: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	list, _ := repo.ListExpenses(ctx)
	if len(list) != 1 || list[0].Description != nil {
		t.Fatalf("expected nil description, got %+v", list)
	}
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateExpense(ctx, core.Expense{Date: "2024-01-01", Category: "food", Amount: 5, Description: strPtr("x")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := core.Expense{ID: created.ID, Date: "2024-02-02", Category: "fuel", Amount: 40}
	if err := repo.UpdateExpense(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := repo.ListExpenses(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Date != "2024-02-02" || got.Category != "fuel" || got.Amount != 40 || got.Description != nil {
		t.Fatalf("unexpected row after update %+v", got)
	}

	// same values again still matches the row
	if err := repo.UpdateExpense(ctx, updated); err != nil {
		t.Fatalf("idempotent update: %v", err)
	}
}

func TestRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.CreateExpense(ctx, core.Expense{Date: "d", Category: "c", Amount: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.UpdateExpense(ctx, core.Expense{ID: 999, Date: "d", Category: "c", Amount: 2})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}

	list, _ := repo.ListExpenses(ctx)
	if len(list) != 1 || list[0].Amount != 1 {
		t.Fatalf("store changed by failed writes: %+v", list)
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a, _ := repo.CreateExpense(ctx, core.Expense{Date: "d", Category: "c", Amount: 1})
	b, _ := repo.CreateExpense(ctx, core.Expense{Date: "d", Category: "c", Amount: 2})

	if err := repo.DeleteExpense(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := repo.ListExpenses(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected list after delete %+v", list)
	}
	if err := repo.DeleteExpense(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Totals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	total, err := repo.TotalAmount(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 on empty store, got %v", total)
	}
	cats, err := repo.CategoryTotals(ctx)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("expected no categories, got %+v", cats)
	}

	for _, e := range []core.Expense{
		{Date: "d", Category: "food", Amount: 5},
		{Date: "d", Category: "food", Amount: 7},
		{Date: "d", Category: "fuel", Amount: 3},
		{Date: "d", Category: "misc", Amount: 15.5},
	} {
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	total, _ = repo.TotalAmount(ctx)
	if total != 30.5 {
		t.Fatalf("expected total 30.5, got %v", total)
	}

	cats, _ = repo.CategoryTotals(ctx)
	got := map[string]float64{}
	for _, c := range cats {
		got[c.Category] = c.Total
	}
	want := map[string]float64{"food": 12, "fuel": 3, "misc": 15.5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("category %s = %v, want %v", k, got[k], v)
		}
	}
}

func TestRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "expenses.db")

	repo, err := NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{Date: "d", Category: "c", Amount: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected data to survive reopen, got %d rows", len(list))
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOptionsDSN(t *testing.T) {
	if _, err := (Options{Driver: DriverPostgres}).dsn(); err == nil {
		t.Fatal("expected error for postgres without url")
	}
	if _, err := (Options{Driver: "mysql"}).dsn(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	dsn, err := (Options{Driver: DriverPostgres, DatabaseURL: "postgres://u@h/db"}).dsn()
	if err != nil || dsn != "postgres://u@h/db" {
		t.Fatalf("unexpected dsn %q err %v", dsn, err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver Driver
		in     string
		want   string
	}{
		{DriverSQLite, "UPDATE t SET a = ? WHERE id = ?", "UPDATE t SET a = ? WHERE id = ?"},
		{DriverPostgres, "UPDATE t SET a = ? WHERE id = ?", "UPDATE t SET a = $1 WHERE id = $2"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		if got := rebind(tt.driver, tt.in); got != tt.want {
			t.Errorf("rebind(%s, %q) = %q, want %q", tt.driver, tt.in, got, tt.want)
		}
	}
}

func TestRepository_ErrorsWrappedOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	repo.Close()

	e := core.Expense{ID: 1, Date: "2024-01-01", Category: "food", Amount: 1}
	tests := []struct {
		prefix string
		call   func() error
	}{
		{"list expenses", func() error { _, err := repo.ListExpenses(ctx); return err }},
		{"create expense", func() error { _, err := repo.CreateExpense(ctx, e); return err }},
		{"update expense", func() error { return repo.UpdateExpense(ctx, e) }},
		{"delete expense", func() error { return repo.DeleteExpense(ctx, 1) }},
		{"total amount", func() error { _, err := repo.TotalAmount(ctx); return err }},
		{"category totals", func() error { _, err := repo.CategoryTotals(ctx); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error on closed store")
			}
			if n := strings.Count(err.Error(), tt.prefix); n != 1 {
				t.Errorf("%q appears %d times in %q", tt.prefix, n, err.Error())
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("error %q should start with %q", err.Error(), tt.prefix)
			}
		})
	}
}

func TestRepository_WritesDoNotLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	created, err := repo.CreateExpense(ctx, core.Expense{Date: "2024-01-01", Category: "food", Amount: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created.Amount = 3
	if err := repo.UpdateExpense(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if buf.Len() != 0 {
		t.Fatalf("store logged writes: %s", buf.String())
	}
}
