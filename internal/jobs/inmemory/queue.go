package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caixinha/caixinha-server/internal/jobs"
)

// defaultWorkers bounds concurrent statement parses; AI-backed PDF parsing
// is slow and rate-limited upstream.
const defaultWorkers = 3

var errClosed = errors.New("queue is closed")

// Queue is a channel-backed Publisher and Consumer for a single-instance
// deployment. A multi-instance deployment would swap this for Cloud Tasks
// or Pub/Sub behind the same interfaces.
type Queue struct {
	pending chan *jobs.ImportStatementJob
	quit    chan struct{}
	store   jobs.JobStore
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue sizes the pending channel at bufferSize; past that, publishing
// blocks until a worker drains a job.
func NewQueue(bufferSize int, store jobs.JobStore) *Queue {
	return &Queue{
		pending: make(chan *jobs.ImportStatementJob, bufferSize),
		quit:    make(chan struct{}),
		store:   store,
		workers: defaultWorkers,
	}
}

// PublishImportStatement fills in defaults (ID, status, timestamps, retry
// budget), records the job and hands it to the workers.
func (q *Queue) PublishImportStatement(ctx context.Context, job *jobs.ImportStatementJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("save job: %w", err)
		}
	}

	select {
	case q.pending <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.quit:
		return errClosed
	}
}

// Start launches the worker pool. The handler runs concurrently, up to the
// configured worker count.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return errClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.drain(ctx, handler)
		}()
	}
	return nil
}

func (q *Queue) drain(ctx context.Context, handler jobs.JobHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.quit:
			return
		case job := <-q.pending:
			if job == nil {
				return
			}
			q.run(ctx, job, handler)
		}
	}
}

// run executes one attempt. Failed jobs are re-published after a linear
// backoff until the retry budget is spent.
func (q *Queue) run(ctx context.Context, job *jobs.ImportStatementJob, handler jobs.JobHandler) {
	started := time.Now()
	job.Status = jobs.JobStatusRunning
	job.StartedAt = &started
	q.record(ctx, job)

	err := handler(ctx, job)

	finished := time.Now()
	job.CompletedAt = &finished

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	case job.RetryCount < job.MaxRetries:
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		job.Error = err.Error()
		delay := time.Duration(job.RetryCount) * time.Second
		time.AfterFunc(delay, func() {
			job.Status = jobs.JobStatusPending
			job.StartedAt = nil
			job.CompletedAt = nil
			_ = q.PublishImportStatement(ctx, job)
		})
	default:
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
	}

	q.record(ctx, job)
}

func (q *Queue) record(ctx context.Context, job *jobs.ImportStatementJob) {
	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop shuts the queue and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
