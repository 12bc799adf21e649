package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// MaxListLimit caps ListRecentRuns.
const MaxListLimit = 500

func runsTableRef(projectID, datasetID string) string {
	return "`" + projectID + "." + datasetID + "." + analysisRunsTable + "`"
}

// InsertAnalysisRunWithClient inserts one row into analysis_runs.
// Uses DML INSERT to avoid streaming buffer issues.
func InsertAnalysisRunWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *AnalysisRunRow) error {
	q := client.Query(`
		INSERT INTO ` + runsTableRef(client.Project(), datasetID) + ` (
			run_id, model, backend,
			started_ts, finished_ts, duration_ms,
			transaction_count, instruction,
			outcome, failure_kind, error_message,
			discarded_duplicate_groups, raw_prefix, raw_gcs_uri
		)
		VALUES (
			@run_id, @model, @backend,
			@started_ts, @finished_ts, @duration_ms,
			@transaction_count, @instruction,
			@outcome, @failure_kind, @error_message,
			@discarded_duplicate_groups, @raw_prefix, @raw_gcs_uri
		)
	`)

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: row.RunID},
		{Name: "model", Value: row.Model},
		{Name: "backend", Value: row.Backend},
		{Name: "started_ts", Value: row.StartedTS},
		{Name: "finished_ts", Value: row.FinishedTS},
		{Name: "duration_ms", Value: row.DurationMS},
		{Name: "transaction_count", Value: row.TransactionCount},
		{Name: "instruction", Value: row.Instruction},
		{Name: "outcome", Value: row.Outcome},
		{Name: "failure_kind", Value: row.FailureKind},
		{Name: "error_message", Value: row.ErrorMessage},
		{Name: "discarded_duplicate_groups", Value: row.DiscardedDuplicateGroups},
		{Name: "raw_prefix", Value: row.RawPrefix},
		{Name: "raw_gcs_uri", Value: row.RawGCSURI},
	}

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("InsertAnalysisRun: %w", err)
	}
	return nil
}

// ListRecentAnalysisRunsWithClient returns up to limit runs, newest first.
func ListRecentAnalysisRunsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, limit int) ([]*AnalysisRunRow, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := client.Query(`
		SELECT
		  run_id, model, backend,
		  started_ts, finished_ts, duration_ms,
		  transaction_count, instruction,
		  outcome, failure_kind, error_message,
		  discarded_duplicate_groups, raw_prefix, raw_gcs_uri
		FROM ` + runsTableRef(client.Project(), datasetID) + `
		ORDER BY started_ts DESC
		LIMIT @limit
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentAnalysisRuns: query read: %w", err)
	}

	rows := []*AnalysisRunRow{}
	for {
		var r AnalysisRunRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentAnalysisRuns: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// DeleteAnalysisRunsBeforeWithClient removes runs that started before cutoff.
func DeleteAnalysisRunsBeforeWithClient(ctx context.Context, client *bigquery.Client, datasetID string, cutoff time.Time) error {
	q := client.Query(`
		DELETE FROM ` + runsTableRef(client.Project(), datasetID) + `
		WHERE started_ts < @cutoff
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "cutoff", Value: cutoff},
	}

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("DeleteAnalysisRunsBefore: %w", err)
	}
	return nil
}

// EnsureAnalysisRunsTableWithClient creates analysis_runs, partitioned by
// started_ts, when it does not exist yet. It reports whether it created it.
func EnsureAnalysisRunsTableWithClient(ctx context.Context, client *bigquery.Client, datasetID string) (bool, error) {
	table := client.Dataset(datasetID).Table(analysisRunsTable)

	_, err := table.Metadata(ctx)
	if err == nil {
		return false, nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return false, fmt.Errorf("EnsureAnalysisRunsTable: reading metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(AnalysisRunRow{})
	if err != nil {
		return false, fmt.Errorf("EnsureAnalysisRunsTable: inferring schema: %w", err)
	}

	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "started_ts",
		},
		Description: "One row per transaction analysis run",
	}
	if err := table.Create(ctx, meta); err != nil {
		return false, fmt.Errorf("EnsureAnalysisRunsTable: creating table: %w", err)
	}
	return true, nil
}

func runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
