package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/bootstrap"
	"github.com/cuongbtq/petstore/internal/veterinaria/handler"
	"github.com/cuongbtq/petstore/internal/veterinaria/router"
	"github.com/cuongbtq/petstore/internal/veterinaria/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig("VETERINARIA_SERVICE_CONFIG_PATH", "configs/veterinaria-service/config.yaml")
	if err != nil {
		return err
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Jobs.Enabled {
		if err := cfg.ValidateJobsConfig(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting veterinaria service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	if err := bootstrap.Migrate(&cfg.Database, dbClient, appLogger.Logger, storage.Migrations); err != nil {
		return err
	}

	ctx := context.Background()
	facade, closeJobs, err := bootstrap.JobFacade(ctx, cfg, dbClient, appLogger.Logger)
	if err != nil {
		return err
	}
	defer closeJobs()

	bootstrap.SetGinMode(cfg.App.Environment)
	r := router.SetupRouter(&handler.Dependencies{
		Logger:        appLogger.Logger,
		Storage:       storage.NewStorage(dbClient, appLogger.Logger),
		Jobs:          facade,
		UploadDir:     cfg.Uploads.Dir,
		MaxUploadSize: cfg.Uploads.MaxFileSize,
	}, dbClient)

	return bootstrap.Serve(ctx, &cfg.Server, bootstrap.NewServer(&cfg.Server, r), appLogger.Logger)
}
