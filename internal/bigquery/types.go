package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
)

// RunRepository stores and lists archived analysis runs.
type RunRepository interface {
	// InsertRun inserts a single AnalysisRunRow.
	InsertRun(ctx context.Context, row *AnalysisRunRow) error

	// ListRecentRuns returns up to limit runs, most recent first.
	ListRecentRuns(ctx context.Context, limit int) ([]*AnalysisRunRow, error)
}

// AnalysisRunRow represents one analysis run in BigQuery.
type AnalysisRunRow struct {
	RunID   string `bigquery:"run_id" json:"run_id"`   // REQUIRED
	Model   string `bigquery:"model" json:"model"`     // REQUIRED
	Backend string `bigquery:"backend" json:"backend"` // REQUIRED

	StartedTS  time.Time `bigquery:"started_ts" json:"started_ts"`   // REQUIRED
	FinishedTS time.Time `bigquery:"finished_ts" json:"finished_ts"` // REQUIRED
	DurationMS int64     `bigquery:"duration_ms" json:"duration_ms"`

	TransactionCount int64               `bigquery:"transaction_count" json:"transaction_count"`
	Instruction      bigquery.NullString `bigquery:"instruction" json:"instruction"`

	Outcome      string              `bigquery:"outcome" json:"outcome"` // success | failure
	FailureKind  bigquery.NullString `bigquery:"failure_kind" json:"failure_kind"`
	ErrorMessage bigquery.NullString `bigquery:"error_message" json:"error_message"`

	DiscardedDuplicateGroups int64 `bigquery:"discarded_duplicate_groups" json:"discarded_duplicate_groups"`

	// RawPrefix is the start of the model output; RawGCSURI points at the full text when archived.
	RawPrefix bigquery.NullString `bigquery:"raw_prefix" json:"raw_prefix"`
	RawGCSURI bigquery.NullString `bigquery:"raw_gcs_uri" json:"raw_gcs_uri"`
}
