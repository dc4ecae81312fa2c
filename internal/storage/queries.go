package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db     DBTX
	driver Driver
}

func New(db DBTX, driver Driver) *Queries {
	return &Queries{db: db, driver: driver}
}

// rebind rewrites ? placeholders into $n for postgres.
func rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExpenseRow is the raw shape of a row in the expenses table.
type ExpenseRow struct {
	ID          int64
	Date        string
	Category    string
	Amount      float64
	Description sql.NullString
}

const listExpenses = `SELECT id, date, category, amount, description FROM expenses`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, rebind(q.driver, listExpenses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExpenseRow{}
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Category, &i.Amount, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createExpense = `INSERT INTO expenses (date, category, amount, description)
VALUES (?, ?, ?, ?)
RETURNING id`

type CreateExpenseParams struct {
	Date        string
	Category    string
	Amount      float64
	Description sql.NullString
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, rebind(q.driver, createExpense),
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Description,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateExpense = `UPDATE expenses
SET date = ?, category = ?, amount = ?, description = ?
WHERE id = ?`

type UpdateExpenseParams struct {
	Date        string
	Category    string
	Amount      float64
	Description sql.NullString
	ID          int64
}

// UpdateExpense returns the number of rows changed.
func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, rebind(q.driver, updateExpense),
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Description,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

// DeleteExpense returns the number of rows removed.
func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, rebind(q.driver, deleteExpense), id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const totalAmount = `SELECT COALESCE(SUM(amount), 0.0) FROM expenses`

func (q *Queries) TotalAmount(ctx context.Context) (float64, error) {
	row := q.db.QueryRowContext(ctx, rebind(q.driver, totalAmount))
	var total float64
	err := row.Scan(&total)
	return total, err
}

const categoryTotals = `SELECT category, SUM(amount) AS total
FROM expenses
GROUP BY category`

type CategoryTotalsRow struct {
	Category string
	Total    float64
}

func (q *Queries) CategoryTotals(ctx context.Context) ([]CategoryTotalsRow, error) {
	rows, err := q.db.QueryContext(ctx, rebind(q.driver, categoryTotals))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategoryTotalsRow{}
	for rows.Next() {
		var i CategoryTotalsRow
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
