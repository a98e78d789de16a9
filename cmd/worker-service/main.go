package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/petstore/internal/bootstrap"
	"github.com/cuongbtq/petstore/internal/config"
	"github.com/cuongbtq/petstore/internal/worker"
	"github.com/cuongbtq/petstore/internal/worker/tasks"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig("WORKER_SERVICE_CONFIG_PATH", "configs/worker-service/config.yaml")
	if err != nil {
		return err
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("result_backend", cfg.Jobs.ResultBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the database is only needed by the postgres result backend
	var dbClient *postgresql.Client
	if cfg.Jobs.ResultBackend == config.ResultBackendPostgres {
		dbClient, err = bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()
	}

	store, closeStore, err := bootstrap.ResultStore(ctx, cfg, dbClient, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}
	defer closeStore()

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	appLogger.Info("RabbitMQ connection established",
		slog.String("queue", rabbitClient.QueueName()),
	)

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:        appLogger.Logger,
		Consumer:      rabbitClient,
		Store:         store,
		Tasks:         tasks.NewRegistry(),
		Concurrency:   cfg.Worker.Concurrency,
		JobTimeout:    cfg.Worker.JobTimeout,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		WorkerID:      cfg.RabbitMQ.Consumer.Tag,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Start(ctx)
	}()

	appLogger.Info("Worker service started successfully", slog.String("worker_id", workerInstance.ID()))

	select {
	case <-ctx.Done():
		appLogger.Info("Received signal, shutting down gracefully")
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Worker error", slog.Any("error", err))
			return err
		}
		return nil
	}

	workerInstance.Stop()

	// Start returns once in-flight jobs are recorded
	select {
	case <-errChan:
		appLogger.Info("Worker stopped gracefully")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit",
			slog.Duration("shutdown_timeout", cfg.Worker.ShutdownTimeout),
		)
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}
