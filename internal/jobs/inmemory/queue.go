package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/google/uuid"
)

const (
	defaultMaxRetries   = 1
	defaultRetryBackoff = time.Second
)

// Queue is an in-memory job publisher and consumer backed by a buffered
// channel and a fixed pool of workers. Jobs do not survive a restart.
type Queue struct {
	jobChan      chan *jobs.AnalysisJob
	closeChan    chan struct{}
	wg           sync.WaitGroup
	mu           sync.RWMutex
	store        jobs.JobStore
	workerCount  int
	retryBackoff time.Duration
	closed       bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithRetryBackoff sets the base delay before a failed job is re-enqueued.
// The delay grows linearly with the retry count.
func WithRetryBackoff(d time.Duration) QueueOption {
	return func(q *Queue) {
		q.retryBackoff = d
	}
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishAnalysis blocks.
func NewQueue(bufferSize, workerCount int, store jobs.JobStore, opts ...QueueOption) *Queue {
	if workerCount < 1 {
		workerCount = 1
	}
	q := &Queue{
		jobChan:      make(chan *jobs.AnalysisJob, bufferSize),
		closeChan:    make(chan struct{}),
		store:        store,
		workerCount:  workerCount,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// PublishAnalysis implements the Publisher interface.
func (q *Queue) PublishAnalysis(ctx context.Context, job *jobs.AnalysisJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
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
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface. It launches the worker pool and returns.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.AnalysisJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	retry := false
	if err != nil {
		job.Error = err.Error()
		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = jobs.JobStatusRetrying
			retry = true
		} else {
			job.Status = jobs.JobStatusFailed
		}
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	// Scheduled after the save so the timer never races it.
	if retry {
		backoff := time.Duration(job.RetryCount) * q.retryBackoff
		time.AfterFunc(backoff, func() {
			job.Status = jobs.JobStatusPending
			job.StartedAt = nil
			job.CompletedAt = nil
			_ = q.PublishAnalysis(ctx, job)
		})
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
