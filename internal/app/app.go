// Package app builds the long-lived components shared by the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/ledger"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/store/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

const retryBackoff = 2 * time.Second

// App holds the wired components. Runs and Archiver are nil when the
// corresponding archive sink is not configured.
type App struct {
	Store    *sqlite.Store
	Analyzer *analysis.Analyzer
	Ledger   *ledger.Service
	Runs     *infraBQ.BigQueryRunRepository
	Archiver *gcsuploader.RunArchiver

	closers []func() error
}

// New opens the store, builds the generator for the configured backend and
// wires the archive sinks. reg may be nil to skip metrics.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	log := logger.FromContext(ctx)
	a := &App{}

	st, err := sqlite.OpenAndMigrate(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("New: opening store: %w", err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	gen, err := newGenerator(ctx, cfg.Generation)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("New: %w", err)
	}

	opts := []analysis.Option{}
	if reg != nil {
		opts = append(opts, analysis.WithMetrics(analysis.NewMetrics(reg)))
	}

	if cfg.Archive.GCSBucket != "" {
		gcsSvc, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("New: %w", err)
		}
		a.closers = append(a.closers, gcsSvc.Close)
		a.Archiver = gcsuploader.NewRunArchiver(gcsSvc, cfg.Archive.GCSBucket)
	}

	if cfg.ArchiveEnabled() {
		repo, err := infraBQ.NewBigQueryRunRepository(ctx, cfg.Archive.BigQueryProject, cfg.Archive.BigQueryDataset)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("New: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		a.Runs = repo

		var archiver analysis.RawArchiver
		if a.Archiver != nil {
			archiver = a.Archiver
		}
		opts = append(opts, analysis.WithRecorder(infraBQ.NewRunRecorder(repo, archiver)))

		log.Info().
			Str("project", cfg.Archive.BigQueryProject).
			Str("dataset", cfg.Archive.BigQueryDataset).
			Bool("raw_archive", a.Archiver != nil).
			Msg("Analysis run archive enabled")
	}

	a.Analyzer = analysis.NewAnalyzer(gen, analysis.Config{
		DefaultModel:     cfg.Generation.Model,
		Backend:          cfg.Generation.Backend,
		Language:         cfg.Analysis.Language,
		BatchCap:         cfg.Analysis.BatchCap,
		VerifyDuplicates: cfg.Analysis.VerifyDuplicates,
	}, opts...)
	a.Ledger = ledger.NewService(st, a.Analyzer)

	return a, nil
}

func newGenerator(ctx context.Context, cfg config.GenerationConfig) (analysis.Generator, error) {
	var gen analysis.Generator
	switch cfg.Backend {
	case config.BackendGemini:
		g, err := analysis.NewGeminiGenerator(ctx, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		gen = analysis.NewOllamaGenerator(cfg.OllamaURL, cfg.Timeout)
	}
	return analysis.NewRetryingGenerator(gen, cfg.MaxRetries, retryBackoff), nil
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
