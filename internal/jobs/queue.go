package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ResultStore records job outcomes. Complete and Fail succeed at most once per
// job; later calls return ErrAlreadyFinalized.
type ResultStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Complete(ctx context.Context, id string, result map[string]any) error
	Fail(ctx context.Context, id string, message string) error
}

// Broker carries job messages to the workers.
type Broker interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
	IsConnected() bool
}

// Queue is the work queue: it assigns ids, records the pending job and
// publishes it for a worker to pick up.
type Queue struct {
	broker        Broker
	store         ResultStore
	logger        *slog.Logger
	submitTimeout time.Duration
	newID         func() string
}

// QueueOption customizes a Queue.
type QueueOption func(*Queue)

// WithSubmitTimeout bounds how long Enqueue waits on the broker.
func WithSubmitTimeout(d time.Duration) QueueOption {
	return func(q *Queue) { q.submitTimeout = d }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) QueueOption {
	return func(q *Queue) { q.newID = fn }
}

// NewQueue creates a Queue
func NewQueue(broker Broker, store ResultStore, logger *slog.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		broker:        broker,
		store:         store,
		logger:        logger,
		submitTimeout: 5 * time.Second,
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue records a pending job and publishes it. Every failure is reported
// as ErrDispatchUnavailable.
func (q *Queue) Enqueue(ctx context.Context, op Operation, args []any) (string, error) {
	if !q.broker.IsConnected() {
		return "", fmt.Errorf("%w: broker is not connected", ErrDispatchUnavailable)
	}

	encoded, err := EncodeArguments(args)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDispatchUnavailable, err)
	}

	job := &Job{
		ID:        q.newID(),
		Operation: op,
		Arguments: encoded,
		Outcome:   OutcomePending,
	}

	if err := q.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("%w: failed to record job: %v", ErrDispatchUnavailable, err)
	}

	body, err := json.Marshal(Message{JobID: job.ID, Operation: op, Arguments: encoded})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDispatchUnavailable, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, q.submitTimeout)
	defer cancel()

	if err := q.broker.PublishWithRetry(publishCtx, body, "application/json"); err != nil {
		q.logger.Error("Failed to publish job",
			slog.String("job_id", job.ID),
			slog.String("operation", string(op)),
			slog.Any("error", err),
		)
		// the record would otherwise stay pending forever
		if failErr := q.store.Fail(ctx, job.ID, "dispatch failed: "+err.Error()); failErr != nil {
			q.logger.Warn("Failed to mark undispatched job as failed",
				slog.String("job_id", job.ID),
				slog.Any("error", failErr),
			)
		}
		return "", fmt.Errorf("%w: %v", ErrDispatchUnavailable, err)
	}

	q.logger.Info("Job dispatched",
		slog.String("job_id", job.ID),
		slog.String("operation", string(op)),
		slog.Int("arguments", len(encoded)),
	)

	return job.ID, nil
}

// Lookup returns the recorded job.
func (q *Queue) Lookup(ctx context.Context, id string) (*Job, error) {
	return q.store.Get(ctx, id)
}
