package bigquery

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/logger"
)

type runInserter interface {
	InsertRun(ctx context.Context, row *AnalysisRunRow) error
}

// RunRecorder writes each analysis run to analysis_runs. With an archiver it
// first stores the full raw output and keeps its URI on the row.
type RunRecorder struct {
	repo     runInserter
	archiver analysis.RawArchiver
}

// NewRunRecorder creates a recorder. archiver may be nil.
func NewRunRecorder(repo runInserter, archiver analysis.RawArchiver) *RunRecorder {
	return &RunRecorder{repo: repo, archiver: archiver}
}

// RecordRun implements analysis.Recorder. A failed raw upload is logged and
// the row is still written without a URI.
func (r *RunRecorder) RecordRun(ctx context.Context, rec analysis.RunRecord) error {
	var rawURI string
	if r.archiver != nil && rec.Raw != "" {
		uri, err := r.archiver.ArchiveRaw(ctx, rec.RunID, rec.StartedAt, rec.Raw)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().
				Err(err).
				Str("run_id", rec.RunID).
				Msg("Failed to archive raw model output")
		} else {
			rawURI = uri
		}
	}

	if err := r.repo.InsertRun(ctx, NewAnalysisRunRow(rec, rawURI)); err != nil {
		return fmt.Errorf("RecordRun: %w", err)
	}
	return nil
}

var _ analysis.Recorder = (*RunRecorder)(nil)
