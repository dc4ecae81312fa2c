package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("expense not found")
)

// MissingFieldError reports the first required field absent from a write payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field '%s'", e.Field)
}
