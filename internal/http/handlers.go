package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth reports liveness: the process is up and serving
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the store answers
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{}

	if s.store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in Prometheus text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.trace.GetMetrics()
	stats := s.service.Stats()

	var rateLimitHits int64
	var activeClients int
	if s.rateLimiter != nil {
		rateLimitHits = s.rateLimiter.Hits()
		activeClients = s.rateLimiter.ActiveClients()
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", float64(traceMetrics.TotalRequests))
	writeMetric(w, "http_server_errors_total", "counter", "HTTP responses with a 5xx status", float64(traceMetrics.ServerErrors))
	writeMetric(w, "http_request_duration_avg_seconds", "gauge", "Average request duration", traceMetrics.AverageResponseTime.Seconds())
	writeMetric(w, "expenses_created_total", "counter", "Expenses created", float64(stats.Created))
	writeMetric(w, "expenses_updated_total", "counter", "Expenses updated", float64(stats.Updated))
	writeMetric(w, "expenses_deleted_total", "counter", "Expenses deleted", float64(stats.Deleted))
	writeMetric(w, "rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", float64(rateLimitHits))
	writeMetric(w, "active_rate_limit_clients", "gauge", "Clients currently tracked by the rate limiter", float64(activeClients))
	writeMetric(w, "uptime_seconds", "gauge", "Application uptime in seconds", time.Since(s.started).Seconds())
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value float64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %g\n\n", name, value)
}
