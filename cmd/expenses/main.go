package main

import (
	"errors"
	"net/http"
	"os"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).Open(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err, "store_driver", cfg.StoreDriver)
		os.Exit(1)
	}

	svc := services.NewExpenseService(res.Store, res.Publisher, logger)

	opts := apphttp.Options{Logger: logger}
	if cfg.RateLimitRPS > 0 {
		opts.RateLimiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		})
	}
	srv := apphttp.NewServer(cfg.Addr(), svc, res.Store, opts)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cli.GracefulShutdown(ctx, logger, cfg.ShutdownTimeout, srv.Shutdown, res.Cleanup)
	}()

	logger.Info("Starting expenses server",
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"events_backend", cfg.EventsBackend)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		stop()
		<-done
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
