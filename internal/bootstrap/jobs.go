package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/config"
	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/jobs/redisstore"
	"github.com/cuongbtq/petstore/internal/jobs/storage"
	"github.com/cuongbtq/petstore/shared/postgresql"
	"github.com/cuongbtq/petstore/shared/rabbitmq"
)

// closers collects cleanup functions, run in reverse order
type closers []func() error

func (c closers) close(logger *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.Warn("Failed to release resource", slog.Any("error", err))
		}
	}
}

// ResultStore builds the result store selected by jobs.result_backend. db is
// used by the postgres backend and may be nil otherwise.
func ResultStore(ctx context.Context, cfg *config.Config, db *postgresql.Client, logger *slog.Logger) (jobs.ResultStore, func(), error) {
	switch cfg.Jobs.ResultBackend {
	case config.ResultBackendPostgres:
		if db == nil {
			return nil, nil, fmt.Errorf("postgres result backend needs a database connection")
		}
		if err := Migrate(&cfg.Database, db, logger, storage.Migrations); err != nil {
			return nil, nil, err
		}
		logger.Info("Using PostgreSQL result backend")
		return storage.NewStorage(db.GetDB(), logger), func() {}, nil

	case config.ResultBackendRedis:
		client, err := InitRedis(ctx, &cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis result backend",
			slog.String("key_prefix", cfg.Jobs.RedisKeyPrefix),
		)
		cleanup := closers{client.Close}
		return redisstore.New(client.Universal(), cfg.Jobs.RedisKeyPrefix, logger), func() { cleanup.close(logger) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown jobs result_backend %q", cfg.Jobs.ResultBackend)
	}
}

// offlineBroker stands in when job dispatch is disabled or the broker could
// not be reached at start-up; every submission reports dispatch unavailable.
type offlineBroker struct{}

func (offlineBroker) PublishWithRetry(context.Context, []byte, string) error {
	return rabbitmq.ErrNotConnected
}

func (offlineBroker) IsConnected() bool { return false }

// offlineStore never holds jobs; lookups read as processing.
type offlineStore struct{}

func (offlineStore) Create(context.Context, *jobs.Job) error { return jobs.ErrDispatchUnavailable }

func (offlineStore) Get(context.Context, string) (*jobs.Job, error) { return nil, jobs.ErrJobNotFound }

func (offlineStore) Complete(context.Context, string, map[string]any) error {
	return jobs.ErrJobNotFound
}

func (offlineStore) Fail(context.Context, string, string) error { return jobs.ErrJobNotFound }

// JobFacade connects the broker and result store used by an HTTP service to
// submit jobs. A broker that cannot be reached does not stop the service:
// submissions render the error status instead.
func JobFacade(ctx context.Context, cfg *config.Config, db *postgresql.Client, logger *slog.Logger) (*jobs.Facade, func(), error) {
	queueOpts := []jobs.QueueOption{}
	if cfg.Jobs.SubmitTimeout > 0 {
		queueOpts = append(queueOpts, jobs.WithSubmitTimeout(cfg.Jobs.SubmitTimeout))
	}

	if !cfg.Jobs.Enabled {
		logger.Warn("Job dispatch disabled, submissions will report an error status")
		queue := jobs.NewQueue(offlineBroker{}, offlineStore{}, logger, queueOpts...)
		return jobs.NewFacade(queue, logger), func() {}, nil
	}

	store, closeStore, err := ResultStore(ctx, cfg, db, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize result store: %w", err)
	}
	cleanup := closers{func() error { closeStore(); return nil }}

	var broker jobs.Broker = offlineBroker{}
	rabbitClient, err := InitRabbitMQ(&cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error("RabbitMQ unavailable, submissions will report an error status",
			slog.Any("error", err),
		)
	} else {
		broker = rabbitClient
		cleanup = append(cleanup, rabbitClient.Close)
	}

	queue := jobs.NewQueue(broker, store, logger, queueOpts...)
	return jobs.NewFacade(queue, logger), func() { cleanup.close(logger) }, nil
}
