package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/worker/domain"
)

// processJob runs one job and records its outcome. A nil return acks the
// delivery; a RetryableError requeues it.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	job, err := w.store.Get(ctx, msg.JobID)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		w.logger.Warn("Job has no pending record, dropping",
			slog.String("job_id", msg.JobID),
		)
		return fmt.Errorf("job %s: %w", msg.JobID, err)
	case err != nil:
		return domain.NewRetryableError(fmt.Errorf("failed to load job: %w", err))
	}

	if job.Finished() {
		// redelivery of a job some worker already finished
		w.logger.Info("Job already finished, skipping",
			slog.String("job_id", job.ID),
			slog.String("outcome", string(job.Outcome)),
		)
		return nil
	}

	op := msg.Operation
	if op == "" {
		op = job.Operation
	}
	args := msg.Arguments
	if args == nil {
		args = job.Arguments
	}

	var jobCtx context.Context = ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	result, runErr := w.executeJob(jobCtx, job.ID, op, args)
	if runErr != nil {
		w.logger.Error("Job execution failed",
			slog.String("job_id", job.ID),
			slog.String("operation", string(op)),
			slog.String("error", runErr.Error()),
		)
		return w.record(w.store.Fail(ctx, job.ID, runErr.Error()), job.ID)
	}

	w.logger.Info("Job completed successfully",
		slog.String("job_id", job.ID),
		slog.String("operation", string(op)),
	)
	return w.record(w.store.Complete(ctx, job.ID, result), job.ID)
}

// record maps a store write error onto the ack decision
func (w *Worker) record(err error, jobID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jobs.ErrAlreadyFinalized) {
		w.logger.Warn("Job finalized concurrently, keeping first outcome",
			slog.String("job_id", jobID),
		)
		return nil
	}
	return domain.NewRetryableError(fmt.Errorf("failed to record job outcome: %w", err))
}

// executeJob runs the task, turning panics into errors
func (w *Worker) executeJob(ctx context.Context, jobID string, op jobs.Operation, args []json.RawMessage) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Task panicked",
				slog.String("job_id", jobID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return w.tasks.Run(ctx, jobID, op, args)
}
