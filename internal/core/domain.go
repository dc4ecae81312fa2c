package core

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type (
	// Expense is a stored expense record. Description is nil when absent.
	Expense struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		Description *string `json:"description"`
	}

	// ExpenseInput is the write payload for create and update.
	// A nil pointer means the field was absent (or explicitly null).
	ExpenseInput struct {
		Date        *string  `json:"date" validate:"required"`
		Category    *string  `json:"category" validate:"required"`
		Amount      *float64 `json:"amount" validate:"required"`
		Description *string  `json:"description,omitempty"`
	}
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks that date, category and amount are present.
// Only presence is checked; values are not inspected.
func (in ExpenseInput) Validate() error {
	err := inputValidator().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &MissingFieldError{Field: verrs[0].Field()}
	}
	return err
}

// ToExpense builds the record the input describes. Call Validate first.
func (in ExpenseInput) ToExpense(id int64) Expense {
	e := Expense{ID: id, Description: in.Description}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	return e
}

// NewInput is a convenience constructor, mostly for tests and tooling.
func NewInput(date, category string, amount float64, description *string) ExpenseInput {
	return ExpenseInput{
		Date:        &date,
		Category:    &category,
		Amount:      &amount,
		Description: description,
	}
}
