// Package cli provides common process initialization shared by
// cmd/expenses and cmd/expenses-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	"expensetracker/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// makes it the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	logger := newLogger(cfg, os.Stdout)
	log.SetDefault(logger)
	return logger
}

func newLogger(cfg *config.Config, out io.Writer) *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
}

// LoadAndValidateConfig loads configuration, sets up logging and validates.
// Exits the process on validation failure.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// GracefulShutdown waits for ctx to be cancelled, then runs shutdown with
// the given timeout and finally cleanup.
func GracefulShutdown(ctx context.Context, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error, cleanup func() error) {
	<-ctx.Done()
	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if shutdown != nil {
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", log.FieldError, err)
		}
	}
	if cleanup != nil {
		if err := cleanup(); err != nil {
			logger.Error("Cleanup error", log.FieldError, err)
		}
	}

	if shutdownCtx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
		return
	}
	logger.Info("Shutdown complete")
}
