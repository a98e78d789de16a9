// Package worker consumes job messages, runs the matching task and records the
// outcome in the result store.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/worker/domain"
)

// Consumer is the broker side the worker reads from
type Consumer interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Runner executes the task for an operation
type Runner interface {
	Run(ctx context.Context, jobID string, op jobs.Operation, args []json.RawMessage) (map[string]any, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Consumer      Consumer
	Store         jobs.ResultStore
	Tasks         Runner
	Concurrency   int
	JobTimeout    time.Duration
	PrefetchCount int
	// WorkerID names this worker in logs and as consumer tag; generated if empty
	WorkerID string
}

// Worker represents the background job worker
type Worker struct {
	logger        *slog.Logger
	consumer      Consumer
	store         jobs.ResultStore
	tasks         Runner
	concurrency   int
	jobTimeout    time.Duration
	prefetchCount int
	workerID      string

	jobsChan chan *domain.JobMessage
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = domain.DefaultPrefetchCount
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		workerID = fmt.Sprintf("%s-%s-%d", domain.ConsumerTagPrefix, hostname, os.Getpid())
	}

	return &Worker{
		logger:        cfg.Logger,
		consumer:      cfg.Consumer,
		store:         cfg.Store,
		tasks:         cfg.Tasks,
		concurrency:   concurrency,
		jobTimeout:    cfg.JobTimeout,
		prefetchCount: prefetch,
		workerID:      workerID,
		jobsChan:      make(chan *domain.JobMessage, concurrency),
		stopChan:      make(chan struct{}),
	}
}

// ID returns the worker id
func (w *Worker) ID() string {
	return w.workerID
}

// Start begins processing jobs and blocks until ctx is canceled, Stop is
// called or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.spawnWorkerPool(ctx)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		w.startMessageDispatcher(ctx, deliveries)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("Worker context canceled, stopping...")
	case <-w.stopChan:
		w.logger.Info("Worker stop requested")
	case <-dispatcherDone:
		w.logger.Warn("Message dispatcher exited, stopping worker")
	}

	cancel()
	<-dispatcherDone
	w.wg.Wait()

	return nil
}

// Stop signals the worker to stop; safe to call more than once
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
	})
}

// Wait blocks until every pool goroutine returned
func (w *Worker) Wait() {
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
