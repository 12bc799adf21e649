package handlers

import (
	"net/http"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/store"
)

// SummariesHandler serves aggregates, reference lists and the dashboard.
type SummariesHandler struct {
	ledger Ledger
	store  store.Aggregator
}

// NewSummariesHandler creates a new summaries handler.
func NewSummariesHandler(l Ledger, a store.Aggregator) *SummariesHandler {
	return &SummariesHandler{ledger: l, store: a}
}

// ByCategory handles GET /api/summary/category
func (h *SummariesHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.store.SummaryByCategory(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Summary")
		return
	}
	middleware.WriteList(w, rows, len(rows))
}

// ByDate handles GET /api/summary/date
func (h *SummariesHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.store.SummaryByDate(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Summary")
		return
	}
	middleware.WriteList(w, rows, len(rows))
}

// ByPlatform handles GET /api/summary/platform
func (h *SummariesHandler) ByPlatform(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.store.SummaryByPlatform(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Summary")
		return
	}
	middleware.WriteList(w, rows, len(rows))
}

// Balance handles GET /api/balance
func (h *SummariesHandler) Balance(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := h.store.Balance(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Balance")
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, balance)
}

// Categories handles GET /api/categories
func (h *SummariesHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Categories")
		return
	}
	middleware.WriteList(w, categories, len(categories))
}

// Platforms handles GET /api/platforms
func (h *SummariesHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.store.ListPlatforms(r.Context())
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Platforms")
		return
	}
	middleware.WriteList(w, platforms, len(platforms))
}

// Dashboard handles GET /api/dashboard
func (h *SummariesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dashboard, err := h.ledger.Dashboard(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Dashboard")
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, dashboard)
}
