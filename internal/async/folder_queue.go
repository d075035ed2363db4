package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sagar9995/shipcrop/internal/pipeline"
)

// Job is one folder to process.
type Job struct {
	InDir       string
	OutDir      string
	SubmittedAt time.Time
}

// Result pairs a job with its outcome. Every enqueued job produces exactly
// one Result, including jobs whose worker panicked.
type Result struct {
	Job Job
	Res pipeline.FolderResult
	Err error
}

type FolderQueue struct {
	proc    *pipeline.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*FolderQueue)

func WithWorkers(n int) Option {
	return func(q *FolderQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *FolderQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan Result, n)
		}
	}
}

func WithFolderTimeout(d time.Duration) Option {
	return func(q *FolderQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewFolderQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *FolderQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &FolderQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
		results: make(chan Result, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

// Results delivers one entry per enqueued job. The channel is closed once
// Shutdown has drained all workers.
func (q *FolderQueue) Results() <-chan Result {
	return q.results
}

func (q *FolderQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					res, err := q.runOne(job)
					if err != nil {
						q.logger.Error("folder processing failed", "worker_id", workerID, "folder", job.InDir, "error", err)
					} else {
						q.logger.Info("folder processed", "worker_id", workerID, "folder", job.InDir, "pages", res.Pages)
					}
					q.results <- Result{Job: job, Res: res, Err: err}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// runOne isolates a single folder run; a panic in the PDF stack fails only
// that folder's job.
func (q *FolderQueue) runOne(job Job) (res pipeline.FolderResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("folder run panicked: %v", rec)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	return q.proc.ProcessFolder(ctx, job.InDir, job.OutDir)
}

func (q *FolderQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "folder", job.InDir)
		return nil
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued folder for processing", "folder", job.InDir)
	default:
		q.logger.Warn("queue full, applying backpressure", "folder", job.InDir)
		q.ch <- job
	}
	return nil
}

// Shutdown stops accepting jobs, waits for in-flight work, then closes the
// results channel.
func (q *FolderQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.wg.Wait()
		close(q.results)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
