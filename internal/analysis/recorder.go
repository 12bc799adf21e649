package analysis

import (
	"context"
	"errors"
	"time"
)

// RunRecord describes one analysis run for diagnostics.
type RunRecord struct {
	RunID                    string
	Model                    string
	Backend                  string
	StartedAt                time.Time
	FinishedAt               time.Time
	TransactionCount         int
	Instruction              string
	Outcome                  Outcome
	FailureKind              FailureKind
	Error                    string
	Raw                      string // full raw model text, empty when the call failed
	DiscardedDuplicateGroups int
}

// Recorder archives run records. Errors are reported to the caller for
// logging only; they never change an analysis result.
type Recorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// NopRecorder discards every record.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, RunRecord) error { return nil }

// MultiRecorder fans a record out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordRun(ctx context.Context, rec RunRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RawArchiver stores the full raw text of a run and returns where it went.
type RawArchiver interface {
	ArchiveRaw(ctx context.Context, runID string, startedAt time.Time, raw string) (string, error)
}
