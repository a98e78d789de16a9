// Package jobs submits deferred work to the broker and translates recorded
// outcomes into the status views polled by clients.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Operation names a kind of deferred work.
type Operation string

const (
	OpInventoryFileProcessing   Operation = "inventory-file-processing"
	OpPriceBatchUpdate          Operation = "price-batch-update"
	OpInventoryReportGeneration Operation = "inventory-report-generation"
	OpMedicalDocumentOCR        Operation = "medical-document-ocr"
	OpMedicalReportGeneration   Operation = "medical-report-generation"
)

// Operations lists every operation the worker knows how to run.
var Operations = []Operation{
	OpInventoryFileProcessing,
	OpPriceBatchUpdate,
	OpInventoryReportGeneration,
	OpMedicalDocumentOCR,
	OpMedicalReportGeneration,
}

// Valid reports whether o is one of Operations.
func (o Operation) Valid() bool {
	for _, known := range Operations {
		if o == known {
			return true
		}
	}
	return false
}

// Outcome is the raw state recorded for a job.
type Outcome string

const (
	OutcomePending Outcome = "not-ready"
	OutcomeSuccess Outcome = "ready-success"
	OutcomeFailure Outcome = "ready-failure"
)

var (
	// ErrJobNotFound is returned by result stores for ids they never recorded
	ErrJobNotFound = errors.New("job not found")

	// ErrAlreadyFinalized is returned when a finished job is finished again
	ErrAlreadyFinalized = errors.New("job already finalized")

	// ErrDispatchUnavailable is returned when the broker cannot take the job
	ErrDispatchUnavailable = errors.New("dispatch unavailable")
)

// Job is one submitted unit of deferred work.
type Job struct {
	ID        string
	Operation Operation
	Arguments []json.RawMessage
	Outcome   Outcome
	// Result is set once the job succeeded.
	Result map[string]any
	// Error is set once the job failed.
	Error string
}

// Finished reports whether the job reached a terminal outcome.
func (j *Job) Finished() bool {
	return j.Outcome == OutcomeSuccess || j.Outcome == OutcomeFailure
}

// Message is the body published to the broker.
type Message struct {
	JobID     string            `json:"job_id"`
	Operation Operation         `json:"operation"`
	Arguments []json.RawMessage `json:"arguments"`
}

// EncodeArguments marshals positional arguments one by one.
func EncodeArguments(args []any) ([]json.RawMessage, error) {
	encoded := make([]json.RawMessage, len(args))
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		encoded[i] = raw
	}
	return encoded, nil
}

// DecodeMessage parses a broker body.
func DecodeMessage(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse job message: %w", err)
	}
	if msg.JobID == "" {
		return nil, errors.New("job message has no job_id")
	}
	return &msg, nil
}
