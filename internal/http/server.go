package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
)

// ExpenseService is what the handlers need from the service layer
type ExpenseService interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	TotalExpense(ctx context.Context) (core.TotalSummary, error)
	ExpensesByCategory(ctx context.Context) ([]core.CategoryTotal, error)
	Stats() services.Stats
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries optional server collaborators
type Options struct {
	Logger      *log.Logger
	RateLimiter *ratelimit.Limiter
	ClientIP    *security.ClientIP
	Headers     *security.HeadersConfig
}

type Server struct {
	http.Server
	service     ExpenseService
	store       Pinger
	trace       *trace.Middleware
	rateLimiter *ratelimit.Limiter
	started     time.Time
}

func NewServer(addr string, service ExpenseService, store Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	clientIP := opts.ClientIP
	if clientIP == nil {
		clientIP = security.NewClientIP()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		service:     service,
		store:       store,
		trace:       trace.NewMiddleware(logger, clientIP.Extract),
		rateLimiter: opts.RateLimiter,
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /analytics/total", s.handleTotal)
	mux.HandleFunc("GET /analytics/category", s.handleByCategory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var handler http.Handler = mux
	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(clientIP.Extract, s.onRateLimit,
			http.MethodPost, http.MethodPut, http.MethodDelete)(handler)
	}
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
}
