// Package redisstore keeps job outcomes in Redis, one JSON document per job.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/petstore/internal/jobs"
)

// DefaultKeyPrefix matches the key layout of Celery's redis backend.
const DefaultKeyPrefix = "celery-task-meta-"

const maxTxRetries = 5

type record struct {
	TaskID    string            `json:"task_id"`
	Operation jobs.Operation    `json:"operation"`
	Arguments []json.RawMessage `json:"arguments"`
	Status    jobs.Outcome      `json:"status"`
	Result    map[string]any    `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func fromJob(j *jobs.Job) record {
	args := j.Arguments
	if args == nil {
		args = []json.RawMessage{}
	}
	return record{
		TaskID:    j.ID,
		Operation: j.Operation,
		Arguments: args,
		Status:    j.Outcome,
		Result:    j.Result,
		Error:     j.Error,
	}
}

func (r record) toJob() *jobs.Job {
	return &jobs.Job{
		ID:        r.TaskID,
		Operation: r.Operation,
		Arguments: r.Arguments,
		Outcome:   r.Status,
		Result:    r.Result,
		Error:     r.Error,
	}
}

// Store is a jobs.ResultStore on Redis
type Store struct {
	client goredis.UniversalClient
	prefix string
	logger *slog.Logger
}

// New creates a Store. An empty prefix selects DefaultKeyPrefix.
func New(client goredis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix, logger: logger}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Create stores a pending job; ids are never overwritten
func (s *Store) Create(ctx context.Context, job *jobs.Job) error {
	body, err := json.Marshal(fromJob(job))
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(job.ID), body, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return nil
}

// Get loads a job
func (s *Store) Get(ctx context.Context, id string) (*jobs.Job, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, jobs.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return rec.toJob(), nil
}

// Complete records a successful outcome
func (s *Store) Complete(ctx context.Context, id string, result map[string]any) error {
	return s.finalize(ctx, id, func(r *record) {
		r.Status = jobs.OutcomeSuccess
		r.Result = result
	})
}

// Fail records a failed outcome
func (s *Store) Fail(ctx context.Context, id string, message string) error {
	return s.finalize(ctx, id, func(r *record) {
		r.Status = jobs.OutcomeFailure
		r.Error = message
	})
}

// finalize applies an outcome under WATCH so two finishers cannot both win
func (s *Store) finalize(ctx context.Context, id string, apply func(*record)) error {
	key := s.key(id)

	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return jobs.ErrJobNotFound
		}
		if err != nil {
			return err
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode job: %w", err)
		}
		if rec.Status != jobs.OutcomePending {
			return jobs.ErrAlreadyFinalized
		}

		apply(&rec)
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, body, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			s.logger.Debug("Job finalize raced, retrying",
				slog.String("job_id", id),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil && !errors.Is(err, jobs.ErrJobNotFound) && !errors.Is(err, jobs.ErrAlreadyFinalized) {
			return fmt.Errorf("failed to update job outcome: %w", err)
		}
		return err
	}

	return fmt.Errorf("failed to update job outcome after %d attempts: %w", maxTxRetries, goredis.TxFailedErr)
}
