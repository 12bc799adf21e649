package jobs

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalysis analyzes the most recent transactions matching a filter.
	JobTypeAnalysis JobType = "analysis"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job finished. Its result may still be
	// an analysis failure.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job could not produce a result at all.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ErrJobNotFound is returned when a job id is unknown or has expired.
var ErrJobNotFound = errors.New("job not found")

// AnalysisJob is an asynchronous analysis request and, once done, its result.
type AnalysisJob struct {
	JobID string `json:"job_id"`

	// Filter selecting the transactions to analyze.
	DateFrom *civil.Date `json:"date_from,omitempty"`
	DateTo   *civil.Date `json:"date_to,omitempty"`
	Category string      `json:"category,omitempty"`
	Platform string      `json:"platform,omitempty"`

	// Instruction is the optional user request added to the prompt.
	Instruction string `json:"prompt,omitempty"`
	// Model overrides the configured default model when set.
	Model string `json:"model,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Result is set when the job completes.
	Result *analysis.Result `json:"result,omitempty"`
}

// Filter returns the transaction filter the job was created with.
func (j *AnalysisJob) Filter() domain.TransactionFilter {
	return domain.TransactionFilter{
		DateFrom: j.DateFrom,
		DateTo:   j.DateTo,
		Category: j.Category,
		Platform: j.Platform,
	}
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalysisJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalysisJob) GetType() JobType {
	return JobTypeAnalysis
}

// GetStatus implements the Job interface.
func (j *AnalysisJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishAnalysis(ctx context.Context, job *AnalysisJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps job state for status polling.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalysisJob) error

	// GetJob retrieves a job by ID or returns ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*AnalysisJob, error)

	// ListJobs retrieves jobs, newest first, with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalysisJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
