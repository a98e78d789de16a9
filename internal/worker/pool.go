package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg := <-w.jobsChan:
			w.logger.Info("Worker received job",
				slog.String("worker_name", workerName),
				slog.String("job_id", msg.JobID),
				slog.String("operation", string(msg.Operation)),
			)

			// in-flight jobs run to completion even when shutdown starts
			err := w.processJob(context.WithoutCancel(ctx), msg)
			if err != nil {
				requeue := w.shouldRequeueJob(err)
				w.logger.Error("Job processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
					slog.Bool("requeue", requeue),
					slog.String("error", err.Error()),
				)
				w.nack(&msg.Delivery, msg.JobID, requeue)
				continue
			}

			w.ack(&msg.Delivery, msg.JobID)
		}
	}
}

// shouldRequeueJob requeues only transient failures; everything else has
// already been recorded or can never succeed.
func (w *Worker) shouldRequeueJob(err error) bool {
	return domain.IsRetryable(err)
}
