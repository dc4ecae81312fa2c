package http

import (
	"net/http"

	"expensetracker/internal/log"
)

// handleTotal returns the sum of every expense amount, 0 when empty
func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.service.TotalExpense(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpTotal, err)
		return
	}
	NewJSONResponse().Body(total).Write(w)
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	totals, err := s.service.ExpensesByCategory(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpCategory, err)
		return
	}
	NewJSONResponse().Body(totals).Write(w)
}
