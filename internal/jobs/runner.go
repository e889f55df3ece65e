// Package jobs provides the in-process background job runner. Jobs are
// not persisted: a crash after acknowledgement loses them.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the queue buffer is exhausted.
var ErrQueueFull = errors.New("job queue full")

// Job is a unit of deferred work. Run is invoked exactly once on a worker
// goroutine and is never retried.
type Job struct {
	ID  uuid.UUID
	Run func(ctx context.Context)
}

// Runner executes jobs on a fixed pool of workers fed by a bounded queue.
type Runner struct {
	jobs     chan Job
	wg       sync.WaitGroup
	workers  int
	stopOnce sync.Once
}

func NewRunner(workers, queueSize int) *Runner {
	return &Runner{
		jobs:    make(chan Job, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	slog.Info("job runner started", "workers", r.workers, "queue_size", cap(r.jobs))
}

// Submit queues a job without blocking. It fails with ErrQueueFull rather
// than waiting, so callers can signal backpressure to clients.
func (r *Runner) Submit(job Job) error {
	select {
	case r.jobs <- job:
		return nil
	default:
		slog.Warn("job queue full, rejecting", "job_id", job.ID)
		return ErrQueueFull
	}
}

// Depth reports the number of queued, not yet started jobs.
func (r *Runner) Depth() int {
	return len(r.jobs)
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for job := range r.jobs {
		start := time.Now()
		slog.Info("job started", "worker", id, "job_id", job.ID)

		// Jobs outlive the request that queued them and nothing in the
		// system cancels running inference.
		job.Run(context.Background())

		slog.Info("job finished", "worker", id, "job_id", job.ID, "duration", time.Since(start))
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (r *Runner) Shutdown() {
	r.stopOnce.Do(func() {
		close(r.jobs)
	})
	r.wg.Wait()
}
