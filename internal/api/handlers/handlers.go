// Package handlers implements the HTTP API on top of the ledger, store, job
// queue and run archive.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/store"
	"github.com/rs/zerolog"
)

// Ledger is the read side the handlers depend on.
type Ledger interface {
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]ledger.TransactionView, error)
	GetTransaction(ctx context.Context, id int64) (ledger.TransactionView, error)
	Dashboard(ctx context.Context, filter domain.TransactionFilter) (ledger.Dashboard, error)
	AnalyzeRecent(ctx context.Context, filter domain.TransactionFilter, instruction, model string) (analysis.Result, error)
}

// parseFilter reads date_from, date_to, category and platform.
func parseFilter(r *http.Request) (domain.TransactionFilter, error) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Platform: strings.TrimSpace(query.Get("platform")),
	}

	var err error
	if filter.DateFrom, err = parseOptionalDate(query.Get("date_from")); err != nil {
		return filter, fmt.Errorf("invalid date_from: %w", err)
	}
	if filter.DateTo, err = parseOptionalDate(query.Get("date_to")); err != nil {
		return filter, fmt.Errorf("invalid date_to: %w", err)
	}
	return filter, nil
}

func parseOptionalDate(s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDate accepts YYYY-MM-DD, optionally followed by a time part.
func parseDate(s string) (civil.Date, error) {
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	return civil.ParseDate(s)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// writeStoreError maps store errors to 404 or a logged 500.
func writeStoreError(w http.ResponseWriter, log zerolog.Logger, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Error().Err(err).Msg("Store operation failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Failed to process "+strings.ToLower(what))
}
