package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
)

const maxBodyBytes = 1 << 20

var errInvalidID = errors.New("invalid expense id")

var errTrailingData = errors.New("unexpected data after JSON object")

// decodeExpenseInput reads a JSON write payload. Unknown fields are
// ignored; presence checks happen in the service. The body must hold
// exactly one JSON value.
func decodeExpenseInput(w http.ResponseWriter, r *http.Request) (core.ExpenseInput, error) {
	var in core.ExpenseInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		return core.ExpenseInput{}, fmt.Errorf("decode expense: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.ExpenseInput{}, fmt.Errorf("decode expense: %w", errTrailingData)
	}
	return in, nil
}

// parseExpenseID returns the positive integer id from the path.
func parseExpenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
