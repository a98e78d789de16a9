package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/jobs/jobstest"
	"github.com/cuongbtq/petstore/shared/logger"
)

func TestFacade_SubmitReturnsUniqueIDs(t *testing.T) {
	facade, _, _ := jobstest.NewFacade()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		handle, err := facade.Submit(ctx, jobs.OpInventoryReportGeneration, i, "stock_low")
		require.NoError(t, err)
		require.NotEmpty(t, handle.TaskID)
		assert.False(t, seen[handle.TaskID], "duplicate id %s", handle.TaskID)
		seen[handle.TaskID] = true
	}
}

func TestFacade_ImmediateStatusIsProcessing(t *testing.T) {
	facade, _, _ := jobstest.NewFacade()
	ctx := context.Background()

	handle, err := facade.Submit(ctx, jobs.OpInventoryFileProcessing, "/tmp/inv.xlsx", "excel")
	require.NoError(t, err)

	view := facade.Status(ctx, handle.TaskID)
	assert.Equal(t, jobs.StatusView{Status: jobs.StatusProcessing, TaskID: handle.TaskID}, view)
}

func TestFacade_SubmitPublishesMessage(t *testing.T) {
	facade, broker, store := jobstest.NewFacade()
	ctx := context.Background()

	handle, err := facade.Submit(ctx, jobs.OpMedicalReportGeneration, 7, []int{1, 2})
	require.NoError(t, err)

	msgs := broker.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, handle.TaskID, msgs[0].JobID)
	assert.Equal(t, jobs.OpMedicalReportGeneration, msgs[0].Operation)
	require.Len(t, msgs[0].Arguments, 2)
	assert.JSONEq(t, `7`, string(msgs[0].Arguments[0]))
	assert.JSONEq(t, `[1,2]`, string(msgs[0].Arguments[1]))

	job, err := store.Get(ctx, handle.TaskID)
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomePending, job.Outcome)
}

func TestFacade_SubmitWithoutArguments(t *testing.T) {
	facade, broker, _ := jobstest.NewFacade()

	_, err := facade.Submit(context.Background(), jobs.OpMedicalDocumentOCR)
	require.NoError(t, err)

	msgs := broker.Messages()
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0].Arguments)
	assert.Empty(t, msgs[0].Arguments)
}

func TestFacade_CompletedReadsAreIdempotent(t *testing.T) {
	facade, _, store := jobstest.NewFacade()
	ctx := context.Background()

	handle, err := facade.Submit(ctx, jobs.OpPriceBatchUpdate, []map[string]any{{"sku": "PET001", "new_price": 10}})
	require.NoError(t, err)

	result := map[string]any{"total_updates": 1, "status": "completed"}
	require.NoError(t, store.Complete(ctx, handle.TaskID, result))

	first := facade.Status(ctx, handle.TaskID)
	assert.Equal(t, jobs.StatusCompleted, first.Status)
	assert.Equal(t, result, first.Result)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, facade.Status(ctx, handle.TaskID))
	}

	// the outcome is recorded once
	assert.ErrorIs(t, store.Fail(ctx, handle.TaskID, "late"), jobs.ErrAlreadyFinalized)
	assert.Equal(t, first, facade.Status(ctx, handle.TaskID))
}

func TestFacade_FailedStatus(t *testing.T) {
	facade, _, store := jobstest.NewFacade()
	ctx := context.Background()

	handle, err := facade.Submit(ctx, jobs.OpMedicalDocumentOCR, "/uploads/x.pdf", "radiografia")
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, handle.TaskID, "invalid arguments"))

	view := facade.Status(ctx, handle.TaskID)
	assert.Equal(t, jobs.StatusView{
		Status: jobs.StatusFailed,
		TaskID: handle.TaskID,
		Error:  "invalid arguments",
	}, view)
}

func TestFacade_UnknownIDReadsAsProcessing(t *testing.T) {
	facade, _, _ := jobstest.NewFacade()

	view := facade.Status(context.Background(), "test-task-123")
	assert.Equal(t, jobs.StatusView{Status: jobs.StatusProcessing, TaskID: "test-task-123"}, view)
}

func TestFacade_LookupErrorBecomesErrorStatus(t *testing.T) {
	facade, _, store := jobstest.NewFacade()
	store.GetErr = errors.New("connection refused")

	view := facade.Status(context.Background(), "abc")
	assert.Equal(t, jobs.StatusView{
		Status: jobs.StatusError,
		TaskID: "abc",
		Error:  "connection refused",
	}, view)
}

func TestFacade_DispatchUnavailable(t *testing.T) {
	t.Run("broker disconnected", func(t *testing.T) {
		facade, broker, store := jobstest.NewFacade()
		broker.SetConnected(false)

		_, err := facade.Submit(context.Background(), jobs.OpInventoryFileProcessing, "/tmp/a.csv", "csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, jobs.ErrDispatchUnavailable)
		assert.Empty(t, store.IDs())
	})

	t.Run("publish fails", func(t *testing.T) {
		facade, broker, store := jobstest.NewFacade()
		broker.PublishErr = errors.New("channel closed")

		_, err := facade.Submit(context.Background(), jobs.OpInventoryFileProcessing, "/tmp/a.csv", "csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, jobs.ErrDispatchUnavailable)
		assert.Contains(t, err.Error(), "channel closed")

		// the orphaned record is closed out as failed
		ids := store.IDs()
		require.Len(t, ids, 1)
		job, getErr := store.Get(context.Background(), ids[0])
		require.NoError(t, getErr)
		assert.Equal(t, jobs.OutcomeFailure, job.Outcome)
	})

	t.Run("unencodable argument", func(t *testing.T) {
		facade, _, _ := jobstest.NewFacade()

		_, err := facade.Submit(context.Background(), jobs.OpInventoryFileProcessing, make(chan int))
		assert.ErrorIs(t, err, jobs.ErrDispatchUnavailable)
	})
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, jobs.Operation, []any) (string, error) {
	return "", errors.New("boom")
}

func (failingQueue) Lookup(context.Context, string) (*jobs.Job, error) {
	return nil, jobs.ErrJobNotFound
}

func TestFacade_SubmitErrorsAreDispatchErrors(t *testing.T) {
	facade := jobs.NewFacade(failingQueue{}, logger.NewNop().Logger)

	_, err := facade.Submit(context.Background(), jobs.OpPriceBatchUpdate)
	assert.ErrorIs(t, err, jobs.ErrDispatchUnavailable)
	assert.Contains(t, err.Error(), "boom")
}

func TestQueue_CustomIDGenerator(t *testing.T) {
	broker := jobstest.NewBroker()
	store := jobstest.NewStore()
	queue := jobs.NewQueue(broker, store, logger.NewNop().Logger, jobs.WithIDGenerator(func() string { return "fixed-id" }))

	id, err := queue.Enqueue(context.Background(), jobs.OpPriceBatchUpdate, []any{})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	job, err := queue.Lookup(context.Background(), "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, jobs.OpPriceBatchUpdate, job.Operation)
}

func TestStatusView_JSON(t *testing.T) {
	processing, err := json.Marshal(jobs.StatusView{Status: jobs.StatusProcessing, TaskID: "t1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"processing","task_id":"t1"}`, string(processing))

	completed, err := json.Marshal(jobs.StatusView{Status: jobs.StatusCompleted, TaskID: "t1", Result: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","task_id":"t1","result":{"a":1}}`, string(completed))

	noResult, err := json.Marshal(jobs.StatusView{Status: jobs.StatusCompleted, TaskID: "t1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","task_id":"t1","result":{}}`, string(noResult))

	failed, err := json.Marshal(jobs.StatusView{Status: jobs.StatusFailed, TaskID: "t1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","task_id":"t1","error":""}`, string(failed))
}

func TestFacade_EmptyOutcomesKeepTheirField(t *testing.T) {
	facade, _, store := jobstest.NewFacade()
	ctx := context.Background()

	done, err := facade.Submit(ctx, jobs.OpInventoryReportGeneration, 1, "stock_low")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, done.TaskID, map[string]any{}))

	raw, err := json.Marshal(facade.Status(ctx, done.TaskID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","task_id":"`+done.TaskID+`","result":{}}`, string(raw))

	failed, err := facade.Submit(ctx, jobs.OpInventoryReportGeneration, 1, "stock_low")
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, failed.TaskID, ""))

	raw, err = json.Marshal(facade.Status(ctx, failed.TaskID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","task_id":"`+failed.TaskID+`","error":""}`, string(raw))
}

func TestOperationValid(t *testing.T) {
	for _, op := range jobs.Operations {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, jobs.Operation("teleport").Valid())
}

func TestDecodeMessage(t *testing.T) {
	msg, err := jobs.DecodeMessage([]byte(`{"job_id":"j1","operation":"price-batch-update","arguments":[[]]}`))
	require.NoError(t, err)
	assert.Equal(t, "j1", msg.JobID)
	assert.Equal(t, jobs.OpPriceBatchUpdate, msg.Operation)

	_, err = jobs.DecodeMessage([]byte(`not json`))
	assert.Error(t, err)

	_, err = jobs.DecodeMessage([]byte(`{"operation":"price-batch-update"}`))
	assert.ErrorContains(t, err, "no job_id")
}

func TestSubmissionBody(t *testing.T) {
	body := jobs.SubmissionBody(jobs.Handle{TaskID: "t-1"}, nil, map[string]any{"filename": "stock.csv"})
	assert.Equal(t, map[string]any{"task_id": "t-1", "status": "processing", "filename": "stock.csv"}, body)

	body = jobs.SubmissionBody(jobs.Handle{}, jobs.ErrDispatchUnavailable, map[string]any{"filename": "stock.csv"})
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "dispatch unavailable", body["error"])
	assert.NotContains(t, body, "task_id")
}
