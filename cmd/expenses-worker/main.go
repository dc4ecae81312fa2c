package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting expenses-worker", "events_backend", cfg.EventsBackend)

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)

	res, err := factory.Open(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Cleanup()

	mirror, err := factory.NewMirror(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err)
		os.Exit(1)
	}

	hostname, _ := os.Hostname()
	subscriber, err := factory.NewSubscriber(ctx, backendCfg, "expenses-worker-"+hostname)
	if err != nil {
		logger.Error("Failed to initialize subscriber", log.FieldError, err)
		os.Exit(1)
	}
	defer subscriber.Close()

	mirrorWorker := worker.NewMirrorWorker(mirror, res.Store, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := subscriber.Subscribe(gctx, mirrorWorker.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return mirrorWorker.Run(gctx, cfg.ResyncInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	handled, resyncs := mirrorWorker.Stats()
	logger.Info("Worker stopped gracefully", "events_handled", handled, "resyncs", resyncs)
}
