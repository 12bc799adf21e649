package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/bigquery"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps wires the router.
type Deps struct {
	Ledger    Ledger
	Store     store.Store
	Publisher jobs.Publisher
	JobStore  jobs.JobStore
	Runs      bigquery.RunRepository  // nil disables /api/ai/runs
	Limiter   *middleware.RateLimiter // nil disables rate limiting
	Gatherer  prometheus.Gatherer     // nil serves the default registry
}

// NewRouter registers every API route.
func NewRouter(d Deps) *http.ServeMux {
	transactions := NewTransactionsHandler(d.Ledger, d.Store)
	summaries := NewSummariesHandler(d.Ledger, d.Store)
	ai := NewAnalysisHandler(d.Ledger)
	jobsHandler := NewJobsHandler(d.Publisher, d.JobStore)
	runs := NewRunsHandler(d.Runs)

	limited := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Middleware(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteSuccess(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /api/transactions", transactions.ListTransactions)
	mux.HandleFunc("POST /api/transactions", transactions.CreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", transactions.GetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", transactions.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", transactions.DeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/items", transactions.AddItem)
	mux.HandleFunc("PUT /api/items/{id}", transactions.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", transactions.DeleteItem)

	mux.HandleFunc("GET /api/summary/category", summaries.ByCategory)
	mux.HandleFunc("GET /api/summary/date", summaries.ByDate)
	mux.HandleFunc("GET /api/summary/platform", summaries.ByPlatform)
	mux.HandleFunc("GET /api/categories", summaries.Categories)
	mux.HandleFunc("GET /api/platforms", summaries.Platforms)
	mux.HandleFunc("GET /api/balance", summaries.Balance)
	mux.HandleFunc("GET /api/dashboard", summaries.Dashboard)

	mux.Handle("POST /api/ai/analyze", limited(ai.Analyze))
	mux.Handle("POST /api/ai/jobs", limited(jobsHandler.CreateAnalysisJob))
	mux.HandleFunc("GET /api/ai/runs", runs.ListRuns)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)

	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return mux
}
