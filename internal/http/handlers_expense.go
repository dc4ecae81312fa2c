package http

import (
	"errors"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(expenses).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := decodeExpenseInput(w, r)
	if err != nil {
		s.writeBadBody(w, r, err)
		return
	}

	created, err := s.service.CreateExpense(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+strconv.FormatInt(created.ID, 10)).
		Body(created).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		NotFoundError(core.ErrNotFound.Error()).Write(w)
		return
	}

	in, err := decodeExpenseInput(w, r)
	if err != nil {
		s.writeBadBody(w, r, err)
		return
	}

	updated, err := s.service.UpdateExpense(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		NotFoundError(core.ErrNotFound.Error()).Write(w)
		return
	}

	if err := s.service.DeleteExpense(r.Context(), id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}

	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeValidation)
	BadRequestError("invalid request body").Write(w)
}

// writeError maps service errors to status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var missing *core.MissingFieldError
	switch {
	case errors.As(err, &missing):
		logger.WarnContext(ctx, "Missing required field",
			log.FieldOperation, op,
			"field", missing.Field,
			log.FieldErrorType, log.ErrorTypeValidation)
		MissingFieldError(missing.Field, missing.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		logger.InfoContext(ctx, "Expense not found",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeNotFound)
		NotFoundError(core.ErrNotFound.Error()).Write(w)
	default:
		logger.ErrorContext(ctx, "Storage operation failed",
			log.FieldOperation, op,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		InternalServerError(err.Error()).Write(w)
	}
}
