package handlers

import (
	"net/http"
	"strings"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// AnalysisHandler runs synchronous analyses.
type AnalysisHandler struct {
	ledger Ledger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(l Ledger) *AnalysisHandler {
	return &AnalysisHandler{ledger: l}
}

// Analyze handles POST /api/ai/analyze. The response is always a success
// envelope; degraded analyses are reported inside the result.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := r.URL.Query()
	instruction := strings.TrimSpace(query.Get("prompt"))
	model := strings.TrimSpace(query.Get("model"))

	result, err := h.ledger.AnalyzeRecent(r.Context(), filter, instruction, model)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to read transactions for analysis")
		result = analysis.Failure(analysis.FailureInternal, err)
	}

	middleware.WriteSuccess(w, http.StatusOK, result)
}
