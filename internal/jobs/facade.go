package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Client-facing job states.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusError      = "error"
)

// WorkQueue is what the Facade needs from the queue.
type WorkQueue interface {
	Enqueue(ctx context.Context, op Operation, args []any) (string, error)
	Lookup(ctx context.Context, id string) (*Job, error)
}

// Handle identifies a submitted job.
type Handle struct {
	TaskID string
}

// StatusView is the body returned by status endpoints. A completed view always
// carries result and a failed or error view always carries error, even when
// empty.
type StatusView struct {
	Status string         `json:"status"`
	TaskID string         `json:"task_id"`
	Result map[string]any `json:"result"`
	Error  string         `json:"error"`
}

// MarshalJSON writes only the fields that belong to the view's status.
func (v StatusView) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"status":  v.Status,
		"task_id": v.TaskID,
	}
	switch v.Status {
	case StatusCompleted:
		result := v.Result
		if result == nil {
			result = map[string]any{}
		}
		body["result"] = result
	case StatusFailed, StatusError:
		body["error"] = v.Error
	}
	return json.Marshal(body)
}

// Facade submits jobs and reports their status.
type Facade struct {
	queue  WorkQueue
	logger *slog.Logger
}

// NewFacade creates a Facade
func NewFacade(queue WorkQueue, logger *slog.Logger) *Facade {
	return &Facade{queue: queue, logger: logger}
}

// Submit hands the job to the queue and returns without waiting for it. The
// arguments are not checked here; bad ones fail the job in the worker.
func (f *Facade) Submit(ctx context.Context, op Operation, args ...any) (Handle, error) {
	if args == nil {
		args = []any{}
	}

	id, err := f.queue.Enqueue(ctx, op, args)
	if err != nil {
		if !errors.Is(err, ErrDispatchUnavailable) {
			err = errors.Join(ErrDispatchUnavailable, err)
		}
		f.logger.Error("Job submission failed",
			slog.String("operation", string(op)),
			slog.Any("error", err),
		)
		return Handle{}, err
	}

	return Handle{TaskID: id}, nil
}

// Status reports the job state. It never fails: lookup errors become the
// "error" status. Ids that were never submitted read as processing.
func (f *Facade) Status(ctx context.Context, id string) StatusView {
	job, err := f.queue.Lookup(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return StatusView{Status: StatusProcessing, TaskID: id}
	}
	if err != nil {
		f.logger.Error("Job status lookup failed",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
		return StatusView{Status: StatusError, TaskID: id, Error: err.Error()}
	}

	switch job.Outcome {
	case OutcomeSuccess:
		return StatusView{Status: StatusCompleted, TaskID: id, Result: job.Result}
	case OutcomeFailure:
		return StatusView{Status: StatusFailed, TaskID: id, Error: job.Error}
	default:
		return StatusView{Status: StatusProcessing, TaskID: id}
	}
}

// SubmissionBody builds the 200 body of a submission endpoint: the task id
// and processing status, or the error status when dispatch failed. echo is
// merged in either way.
func SubmissionBody(h Handle, err error, echo map[string]any) map[string]any {
	body := make(map[string]any, len(echo)+2)
	for k, v := range echo {
		body[k] = v
	}
	if err != nil {
		body["status"] = StatusError
		body["error"] = err.Error()
		return body
	}
	body["task_id"] = h.TaskID
	body["status"] = StatusProcessing
	return body
}
