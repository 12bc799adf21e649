package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// BigQueryRunRepository is the RunRepository backed by BigQuery. It holds a
// shared client to avoid creating a new connection for each operation.
type BigQueryRunRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryRunRepository creates a repository for projectID.datasetID.analysis_runs.
func NewBigQueryRunRepository(ctx context.Context, projectID, datasetID string) (*BigQueryRunRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRunRepository: creating client: %w", err)
	}
	return &BigQueryRunRepository{
		client:    client,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryRunRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertRun delegates to InsertAnalysisRunWithClient.
func (r *BigQueryRunRepository) InsertRun(ctx context.Context, row *AnalysisRunRow) error {
	return InsertAnalysisRunWithClient(ctx, r.client, r.datasetID, row)
}

// ListRecentRuns delegates to ListRecentAnalysisRunsWithClient.
func (r *BigQueryRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*AnalysisRunRow, error) {
	return ListRecentAnalysisRunsWithClient(ctx, r.client, r.datasetID, limit)
}

// DeleteRunsBefore delegates to DeleteAnalysisRunsBeforeWithClient.
func (r *BigQueryRunRepository) DeleteRunsBefore(ctx context.Context, cutoff time.Time) error {
	return DeleteAnalysisRunsBeforeWithClient(ctx, r.client, r.datasetID, cutoff)
}

// EnsureTable delegates to EnsureAnalysisRunsTableWithClient.
func (r *BigQueryRunRepository) EnsureTable(ctx context.Context) (bool, error) {
	return EnsureAnalysisRunsTableWithClient(ctx, r.client, r.datasetID)
}

var _ RunRepository = (*BigQueryRunRepository)(nil)
