package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/patrickmn/go-cache"
)

// Store is an in-memory JobStore. Each job expires ttl after its last update.
type Store struct {
	mu    sync.Mutex // serializes read-modify-write updates
	cache *cache.Cache
}

// NewStore creates a job store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{cache: cache.New(ttl, cleanup)}
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.AnalysisJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.cache.Set(job.JobID, &jobCopy, cache.DefaultExpiration)
	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.AnalysisJob, error) {
	v, ok := s.cache.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("GetJob: %s: %w", jobID, jobs.ErrJobNotFound)
	}
	jobCopy := *v.(*jobs.AnalysisJob)
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface. Jobs come back newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.AnalysisJob, error) {
	result := []*jobs.AnalysisJob{}
	for _, item := range s.cache.Items() {
		job := item.Object.(*jobs.AnalysisJob)
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].JobID < result[j].JobID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.AnalysisJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateJobStatus implements the JobStore interface.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(jobID)
	if !ok {
		return fmt.Errorf("UpdateJobStatus: %s: %w", jobID, jobs.ErrJobNotFound)
	}

	jobCopy := *v.(*jobs.AnalysisJob)
	jobCopy.Status = status
	if errorMsg != "" {
		jobCopy.Error = errorMsg
	}
	s.cache.Set(jobID, &jobCopy, cache.DefaultExpiration)
	return nil
}

var _ jobs.JobStore = (*Store)(nil)
