package google

import (
	"fmt"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

var header = []any{"ID", "Date", "Category", "Amount", "Description"}

// lastColumn is the column holding the final header cell
const lastColumn = "E"

func expenseRow(e core.Expense) []any {
	desc := ""
	if e.Description != nil {
		desc = *e.Description
	}
	return []any{e.ID, e.Date, e.Category, e.Amount, desc}
}

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
// values is column A as returned by the API, starting at row 1.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// needsHeader reports whether the header must be written to row 1. A
// row 1 holding anything other than the header is an error, since
// writing there would overwrite it.
func needsHeader(values [][]any) (bool, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return true, nil
	}
	first := strings.TrimSpace(fmt.Sprint(values[0][0]))
	switch {
	case first == "":
		return true, nil
	case strings.EqualFold(first, "ID"):
		return false, nil
	default:
		return false, fmt.Errorf("row 1 holds %q instead of the header", first)
	}
}

// nextRow is the first row after the populated part of column A
func nextRow(values [][]any) int {
	n := len(values) + 1
	if n < 2 {
		n = 2
	}
	return n
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}

func replaceValues(expenses []core.Expense) [][]any {
	values := make([][]any, 0, len(expenses)+1)
	values = append(values, header)
	for _, e := range expenses {
		values = append(values, expenseRow(e))
	}
	return values
}
