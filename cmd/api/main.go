package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/handlers"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/app"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	ctx := logger.WithContext(context.Background(), log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := app.New(ctx, cfg, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	log.Info().
		Str("db", cfg.Database.Path).
		Str("backend", cfg.Generation.Backend).
		Str("model", cfg.Generation.Model).
		Msg("Application initialized")

	// Initialize job infrastructure
	jobStore := inmemory.NewStore(cfg.Jobs.TTL)
	jobQueue := inmemory.NewQueue(cfg.Jobs.QueueSize, cfg.Jobs.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, jobs.NewAnalysisHandler(a.Ledger)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	var limiterOpts []middleware.RateLimiterOption
	if cfg.RateLimit.TrustProxy {
		limiterOpts = append(limiterOpts, middleware.WithTrustedProxy())
	}

	deps := handlers.Deps{
		Ledger:    a.Ledger,
		Store:     a.Store,
		Publisher: jobQueue,
		JobStore:  jobStore,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, limiterOpts...),
		Gatherer:  reg,
	}
	// A nil *BigQueryRunRepository must stay a nil interface.
	if a.Runs != nil {
		deps.Runs = a.Runs
	}
	mux := handlers.NewRouter(deps)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(cfg.Server.AllowedOrigins)(mux),
			),
		),
	)

	// Generation retries must finish before the write deadline.
	writeTimeout := cfg.Generation.Timeout*time.Duration(cfg.Generation.MaxRetries+1) + 30*time.Second

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
