package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/log"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

func (d Driver) sqlDriverName() string {
	return string(d)
}

// Options configures Open.
type Options struct {
	Driver      Driver
	SQLitePath  string
	DatabaseURL string
	Logger      *log.Logger
}

// Repository persists expenses. The handle is created once and never
// reassigned; every operation borrows its own connection and returns it
// before the call completes.
type Repository struct {
	db     *sql.DB
	driver Driver
}

// Open connects to the configured store and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Repository, error) {
	dsn, err := opts.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver.sqlDriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(opts.Driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger.WithComponent(log.ComponentStorage).InfoContext(ctx, "Expense store ready",
		log.FieldOperation, log.OpStartup,
		"driver", opts.Driver)

	return &Repository{db: db, driver: opts.Driver}, nil
}

// NewSQLiteRepository opens a file-backed SQLite store.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*Repository, error) {
	return Open(ctx, Options{Driver: DriverSQLite, SQLitePath: dbPath})
}

func (o Options) dsn() (string, error) {
	switch o.Driver {
	case DriverSQLite, "":
		if o.SQLitePath == "" {
			return "", errors.New("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(o.SQLitePath), 0755); err != nil {
			return "", fmt.Errorf("create db directory: %w", err)
		}
		sep := "?"
		if strings.Contains(o.SQLitePath, "?") {
			sep = "&"
		}
		return o.SQLitePath + sep + "_pragma=busy_timeout(5000)", nil
	case DriverPostgres:
		if o.DatabaseURL == "" {
			return "", errors.New("database url is required for postgres")
		}
		return o.DatabaseURL, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", o.Driver)
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.withConn(ctx, func(conn *sql.Conn, _ *Queries) error {
		return conn.PingContext(ctx)
	})
}

func (r *Repository) withConn(ctx context.Context, fn func(*sql.Conn, *Queries) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn, New(conn, r.driver))
}

func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var rows []ExpenseRow
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		rows, err = q.ListExpenses(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = fromRow(row)
	}
	return expenses, nil
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var id int64
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		id, err = q.CreateExpense(ctx, CreateExpenseParams{
			Date:        e.Date,
			Category:    e.Category,
			Amount:      e.Amount,
			Description: toNullString(e.Description),
		})
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	e.ID = id
	return e, nil
}

// UpdateExpense overwrites every column except id. It never inserts.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	var affected int64
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		affected, err = q.UpdateExpense(ctx, UpdateExpenseParams{
			Date:        e.Date,
			Category:    e.Category,
			Amount:      e.Amount,
			Description: toNullString(e.Description),
			ID:          e.ID,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	var affected int64
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		affected, err = q.DeleteExpense(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	return nil
}

// TotalAmount returns the sum of all amounts, 0 when the table is empty.
func (r *Repository) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		total, err = q.TotalAmount(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("total amount: %w", err)
	}
	return total, nil
}

func (r *Repository) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	var rows []CategoryTotalsRow
	err := r.withConn(ctx, func(_ *sql.Conn, q *Queries) error {
		var err error
		rows, err = q.CategoryTotals(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	totals := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		totals[i] = core.CategoryTotal{Category: row.Category, Total: row.Total}
	}
	return totals, nil
}

func fromRow(row ExpenseRow) core.Expense {
	e := core.Expense{
		ID:       row.ID,
		Date:     row.Date,
		Category: row.Category,
		Amount:   row.Amount,
	}
	if row.Description.Valid {
		desc := row.Description.String
		e.Description = &desc
	}
	return e
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
