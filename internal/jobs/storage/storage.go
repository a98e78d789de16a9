// Package storage records job outcomes in the PostgreSQL jobs table.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/shared/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose source for the jobs table.
var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "goose_jobs_version"}

// Storage handles all database operations on jobs
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

type jobRow struct {
	TaskID       string         `db:"task_id"`
	Operation    string         `db:"operation"`
	Arguments    string         `db:"arguments"`
	Outcome      string         `db:"outcome"`
	Result       sql.NullString `db:"result"`
	ErrorMessage sql.NullString `db:"error_message"`
}

// Create inserts a pending job
func (s *Storage) Create(ctx context.Context, job *jobs.Job) error {
	arguments := job.Arguments
	if arguments == nil {
		arguments = []json.RawMessage{}
	}
	args, err := json.Marshal(arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO jobs (task_id, operation, arguments, outcome)
		VALUES (?, ?, ?, ?)
	`)

	if _, err := s.db.ExecContext(ctx, query, job.ID, string(job.Operation), string(args), string(jobs.OutcomePending)); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// Get retrieves a job by its id
func (s *Storage) Get(ctx context.Context, id string) (*jobs.Job, error) {
	query := s.db.Rebind(`
		SELECT task_id, operation, arguments, outcome, result, error_message
		FROM jobs
		WHERE task_id = ?
	`)

	var row jobRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job := &jobs.Job{
		ID:        row.TaskID,
		Operation: jobs.Operation(row.Operation),
		Outcome:   jobs.Outcome(row.Outcome),
		Error:     row.ErrorMessage.String,
	}

	if err := json.Unmarshal([]byte(row.Arguments), &job.Arguments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	if row.Result.Valid {
		if err := json.Unmarshal([]byte(row.Result.String), &job.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return job, nil
}

// Complete records a successful outcome
func (s *Storage) Complete(ctx context.Context, id string, result map[string]any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return s.finalize(ctx, id, jobs.OutcomeSuccess, sql.NullString{String: string(resultJSON), Valid: true}, sql.NullString{})
}

// Fail records a failed outcome
func (s *Storage) Fail(ctx context.Context, id string, message string) error {
	return s.finalize(ctx, id, jobs.OutcomeFailure, sql.NullString{}, sql.NullString{String: message, Valid: true})
}

// finalize only touches pending rows, so the first outcome wins
func (s *Storage) finalize(ctx context.Context, id string, outcome jobs.Outcome, result, errorMsg sql.NullString) error {
	query := s.db.Rebind(`
		UPDATE jobs
		SET outcome = ?,
			result = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE task_id = ? AND outcome = ?
	`)

	res, err := s.db.ExecContext(ctx, query, string(outcome), result, errorMsg, id, string(jobs.OutcomePending))
	if err != nil {
		return fmt.Errorf("failed to update job outcome: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists int
		existsQuery := s.db.Rebind(`SELECT COUNT(*) FROM jobs WHERE task_id = ?`)
		if err := s.db.GetContext(ctx, &exists, existsQuery, id); err != nil {
			return fmt.Errorf("failed to check job: %w", err)
		}
		if exists == 0 {
			return jobs.ErrJobNotFound
		}
		s.logger.Warn("Job outcome already recorded",
			slog.String("job_id", id),
			slog.String("outcome", string(outcome)),
		)
		return jobs.ErrAlreadyFinalized
	}

	s.logger.Info("Job outcome recorded",
		slog.String("job_id", id),
		slog.String("outcome", string(outcome)),
	)

	return nil
}
