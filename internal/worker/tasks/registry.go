// Package tasks holds the functions the worker runs for each operation. They
// return fixed payloads; none of them reads the referenced files.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/worker/domain"
)

// Func runs one job and returns its result payload.
type Func func(ctx context.Context, jobID string, args []json.RawMessage) (map[string]any, error)

// Registry maps operations to task functions
type Registry struct {
	tasks map[jobs.Operation]Func
	// newID generates report ids
	newID func() string
}

// NewRegistry returns a Registry with every operation registered
func NewRegistry() *Registry {
	r := &Registry{
		tasks: make(map[jobs.Operation]Func),
		newID: uuid.NewString,
	}

	r.Register(jobs.OpInventoryFileProcessing, processInventoryFile)
	r.Register(jobs.OpPriceBatchUpdate, updateProductPrices)
	r.Register(jobs.OpInventoryReportGeneration, r.generateInventoryReport)
	r.Register(jobs.OpMedicalDocumentOCR, processMedicalDocument)
	r.Register(jobs.OpMedicalReportGeneration, r.generateMedicalReport)

	return r
}

// Register adds or replaces the task for op
func (r *Registry) Register(op jobs.Operation, fn Func) {
	r.tasks[op] = fn
}

// Has reports whether a task is registered for op
func (r *Registry) Has(op jobs.Operation) bool {
	_, ok := r.tasks[op]
	return ok
}

// Run executes the task registered for op
func (r *Registry) Run(ctx context.Context, jobID string, op jobs.Operation, args []json.RawMessage) (map[string]any, error) {
	fn, ok := r.tasks[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("job execution canceled: %w", err)
	}
	return fn(ctx, jobID, args)
}

// decodeArgs unmarshals positional arguments into dst, one per slot.
func decodeArgs(args []json.RawMessage, dst ...any) error {
	if len(args) != len(dst) {
		return fmt.Errorf("%w: expected %d arguments, got %d", domain.ErrInvalidArguments, len(dst), len(args))
	}
	for i, raw := range args {
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return fmt.Errorf("%w: argument %d: %v", domain.ErrInvalidArguments, i, err)
		}
	}
	return nil
}
