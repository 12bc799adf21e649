package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// JobsHandler handles asynchronous analysis jobs.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore) *JobsHandler {
	return &JobsHandler{publisher: publisher, store: store}
}

// CreateAnalysisJob handles POST /api/ai/jobs
func (h *JobsHandler) CreateAnalysisJob(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := r.URL.Query()

	job := &jobs.AnalysisJob{
		DateFrom:    filter.DateFrom,
		DateTo:      filter.DateTo,
		Category:    filter.Category,
		Platform:    filter.Platform,
		Instruction: strings.TrimSpace(query.Get("prompt")),
		Model:       strings.TrimSpace(query.Get("model")),
	}

	log := logger.FromContext(r.Context())
	if err := h.publisher.PublishAnalysis(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue analysis job")
		return
	}

	log.Info().Str("job_id", job.JobID).Msg("Analysis job enqueued")

	middleware.WriteSuccess(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteList(w, jobsList, len(jobsList))
}
