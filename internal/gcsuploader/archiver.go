package gcsuploader

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/analysis"
)

const rawContentType = "text/plain; charset=utf-8"

// RunArchiver keeps the full raw model output of each analysis run in a bucket.
type RunArchiver struct {
	storage StorageService
	bucket  string
}

// NewRunArchiver archives into bucket through storage.
func NewRunArchiver(storage StorageService, bucket string) *RunArchiver {
	return &RunArchiver{storage: storage, bucket: bucket}
}

// RawObjectName is analysis-runs/YYYY/MM/DD/<run_id>.txt, dated in UTC.
func RawObjectName(runID string, startedAt time.Time) string {
	return fmt.Sprintf("analysis-runs/%s/%s.txt", startedAt.UTC().Format("2006/01/02"), runID)
}

// ArchiveRaw uploads raw and returns its gs:// URI.
func (a *RunArchiver) ArchiveRaw(ctx context.Context, runID string, startedAt time.Time, raw string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("ArchiveRaw: run id is required")
	}
	object := RawObjectName(runID, startedAt)
	if err := a.storage.UploadBytes(ctx, a.bucket, object, rawContentType, []byte(raw)); err != nil {
		return "", fmt.Errorf("ArchiveRaw: %w", err)
	}
	return GCSURI(a.bucket, object), nil
}

// FetchRaw reads back an archived raw output.
func (a *RunArchiver) FetchRaw(ctx context.Context, gcsURI string) (string, error) {
	data, err := a.storage.FetchFromGCS(ctx, gcsURI)
	if err != nil {
		return "", fmt.Errorf("FetchRaw: %w", err)
	}
	return string(data), nil
}

var _ analysis.RawArchiver = (*RunArchiver)(nil)
