package handlers

import (
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/bigquery"
	"github.com/dvloznov/finance-insights/internal/logger"
)

const defaultRunsLimit = 20

// RunsHandler lists archived analysis runs.
type RunsHandler struct {
	repo bigquery.RunRepository
}

// NewRunsHandler creates a runs handler. repo is nil when the archive is disabled.
func NewRunsHandler(repo bigquery.RunRepository) *RunsHandler {
	return &RunsHandler{repo: repo}
}

// ListRuns handles GET /api/ai/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Run archive is not configured")
		return
	}

	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.repo.ListRecentRuns(r.Context(), limit)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to list analysis runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list analysis runs")
		return
	}

	middleware.WriteList(w, runs, len(runs))
}
