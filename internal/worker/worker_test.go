package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/jobs/jobstest"
	"github.com/cuongbtq/petstore/internal/worker/domain"
	"github.com/cuongbtq/petstore/internal/worker/tasks"
	"github.com/cuongbtq/petstore/shared/logger"
)

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

// fakeAcknowledger records ack decisions
type fakeAcknowledger struct {
	mu    sync.Mutex
	calls []ackCall
	done  chan struct{}
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{done: make(chan struct{}, 16)}
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.record(ackCall{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.record(ackCall{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.record(ackCall{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) record(c ackCall) {
	a.mu.Lock()
	a.calls = append(a.calls, c)
	a.mu.Unlock()
	a.done <- struct{}{}
}

func (a *fakeAcknowledger) Calls() []ackCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ackCall(nil), a.calls...)
}

func (a *fakeAcknowledger) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-a.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for ack %d of %d", i+1, n)
		}
	}
}

// fakeConsumer feeds deliveries from a channel
type fakeConsumer struct {
	deliveries chan amqp.Delivery
	qosErr     error
	prefetch   int
	tag        string
}

func (c *fakeConsumer) Qos(prefetchCount int) error {
	c.prefetch = prefetchCount
	return c.qosErr
}

func (c *fakeConsumer) Consume(tag string) (<-chan amqp.Delivery, error) {
	c.tag = tag
	return c.deliveries, nil
}

type fixture struct {
	worker   *Worker
	store    *jobstest.Store
	consumer *fakeConsumer
	acks     *fakeAcknowledger
	registry *tasks.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := jobstest.NewStore()
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 8)}
	registry := tasks.NewRegistry()

	w := NewWorker(&Config{
		Logger:      logger.NewNop().Logger,
		Consumer:    consumer,
		Store:       store,
		Tasks:       registry,
		Concurrency: 2,
		JobTimeout:  time.Second,
		WorkerID:    "worker-test",
	})

	return &fixture{
		worker:   w,
		store:    store,
		consumer: consumer,
		acks:     newFakeAcknowledger(),
		registry: registry,
	}
}

func (f *fixture) pending(t *testing.T, id string, op jobs.Operation, args ...any) *domain.JobMessage {
	t.Helper()

	raw, err := jobs.EncodeArguments(args)
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), &jobs.Job{
		ID:        id,
		Operation: op,
		Arguments: raw,
		Outcome:   jobs.OutcomePending,
	}))

	body, err := json.Marshal(jobs.Message{JobID: id, Operation: op, Arguments: raw})
	require.NoError(t, err)

	return &domain.JobMessage{
		Message:  jobs.Message{JobID: id, Operation: op, Arguments: raw},
		Delivery: amqp.Delivery{Acknowledger: f.acks, DeliveryTag: 1, Body: body},
	}
}

func TestProcessJob_Success(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-1", jobs.OpMedicalDocumentOCR, "/tmp/scan.png", "radiografia")

	require.NoError(t, f.worker.processJob(context.Background(), msg))

	job, err := f.store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeSuccess, job.Outcome)
	assert.Equal(t, "job-1", job.Result["task_id"])
	assert.Equal(t, "radiografia", job.Result["document_type"])
}

func TestProcessJob_TaskErrorRecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.registry.Register(jobs.OpPriceBatchUpdate, func(context.Context, string, []json.RawMessage) (map[string]any, error) {
		return nil, errors.New("price source offline")
	})
	msg := f.pending(t, "job-2", jobs.OpPriceBatchUpdate, []any{})

	err := f.worker.processJob(context.Background(), msg)
	require.NoError(t, err)

	job, err := f.store.Get(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeFailure, job.Outcome)
	assert.Equal(t, "price source offline", job.Error)
}

func TestProcessJob_InvalidArgumentsRecordsFailure(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-3", jobs.OpInventoryReportGeneration, "not-a-store-id", "stock_low")

	require.NoError(t, f.worker.processJob(context.Background(), msg))

	job, err := f.store.Get(context.Background(), "job-3")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeFailure, job.Outcome)
	assert.Contains(t, job.Error, domain.ErrInvalidArguments.Error())
}

func TestProcessJob_UnknownOperation(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-4", jobs.Operation("teleport-pet"))

	err := f.worker.processJob(context.Background(), msg)
	require.NoError(t, err)

	job, err := f.store.Get(context.Background(), "job-4")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeFailure, job.Outcome)
	assert.Contains(t, job.Error, domain.ErrUnknownOperation.Error())
}

func TestProcessJob_PanicRecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.registry.Register(jobs.OpMedicalReportGeneration, func(context.Context, string, []json.RawMessage) (map[string]any, error) {
		panic("boom")
	})
	msg := f.pending(t, "job-5", jobs.OpMedicalReportGeneration, 1, []int64{})

	require.NoError(t, f.worker.processJob(context.Background(), msg))

	job, err := f.store.Get(context.Background(), "job-5")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeFailure, job.Outcome)
	assert.Equal(t, "task panicked: boom", job.Error)
}

func TestProcessJob_RedeliveryKeepsFirstOutcome(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-6", jobs.OpInventoryFileProcessing, "/tmp/a.csv", "csv")
	require.NoError(t, f.store.Fail(context.Background(), "job-6", "first"))

	calls := 0
	f.registry.Register(jobs.OpInventoryFileProcessing, func(context.Context, string, []json.RawMessage) (map[string]any, error) {
		calls++
		return map[string]any{}, nil
	})

	require.NoError(t, f.worker.processJob(context.Background(), msg))
	assert.Zero(t, calls)

	job, err := f.store.Get(context.Background(), "job-6")
	require.NoError(t, err)
	assert.Equal(t, "first", job.Error)
}

func TestProcessJob_MissingRecordIsDropped(t *testing.T) {
	f := newFixture(t)
	msg := &domain.JobMessage{Message: jobs.Message{JobID: "ghost", Operation: jobs.OpMedicalDocumentOCR}}

	err := f.worker.processJob(context.Background(), msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
	assert.False(t, f.worker.shouldRequeueJob(err))
}

func TestProcessJob_StoreErrorIsRetryable(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-7", jobs.OpMedicalDocumentOCR, "/tmp/x", "historial")
	f.store.GetErr = errors.New("connection reset")

	err := f.worker.processJob(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, f.worker.shouldRequeueJob(err))
}

func TestRecord(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.worker.record(nil, "a"))
	assert.NoError(t, f.worker.record(jobs.ErrAlreadyFinalized, "a"))
	assert.True(t, domain.IsRetryable(f.worker.record(errors.New("db down"), "a")))
}

func TestWorker_StartProcessesDeliveries(t *testing.T) {
	f := newFixture(t)
	msg := f.pending(t, "job-8", jobs.OpInventoryReportGeneration, 1, "stock_low")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- f.worker.Start(ctx) }()

	f.consumer.deliveries <- msg.Delivery
	f.consumer.deliveries <- amqp.Delivery{Acknowledger: f.acks, DeliveryTag: 2, Body: []byte("{not json")}
	f.acks.waitFor(t, 2)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.ElementsMatch(t, []ackCall{
		{tag: 1, ack: true},
		{tag: 2, ack: false, requeue: false},
	}, f.acks.Calls())
	assert.Equal(t, domain.DefaultPrefetchCount, f.consumer.prefetch)
	assert.Equal(t, "worker-test", f.consumer.tag)

	job, err := f.store.Get(context.Background(), "job-8")
	require.NoError(t, err)
	assert.Equal(t, jobs.OutcomeSuccess, job.Outcome)
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	f := newFixture(t)

	errCh := make(chan error, 1)
	go func() { errCh <- f.worker.Start(context.Background()) }()

	f.worker.Stop()
	f.worker.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StartFailsOnQos(t *testing.T) {
	f := newFixture(t)
	f.consumer.qosErr = errors.New("channel closed")

	err := f.worker.Start(context.Background())
	assert.ErrorContains(t, err, "failed to set QoS")
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(&Config{Logger: logger.NewNop().Logger})
	assert.Equal(t, 1, w.concurrency)
	assert.Equal(t, domain.DefaultPrefetchCount, w.prefetchCount)
	assert.Contains(t, w.ID(), domain.ConsumerTagPrefix)
}
