package bigquery

import (
	"unicode/utf8"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/analysis"
	bq "github.com/dvloznov/finance-insights/internal/bigquery"
)

// Re-export shared types
type RunRepository = bq.RunRepository
type AnalysisRunRow = bq.AnalysisRunRow

const (
	analysisRunsTable = "analysis_runs"

	// rawPrefixLimit bounds the raw output kept inline on the row.
	rawPrefixLimit = 2000
	// errorLimit bounds error_message.
	errorLimit = 2000
)

// NewAnalysisRunRow converts a run record into a row. rawURI is the archived
// full output, empty when it was not archived.
func NewAnalysisRunRow(rec analysis.RunRecord, rawURI string) *AnalysisRunRow {
	return &AnalysisRunRow{
		RunID:                    rec.RunID,
		Model:                    rec.Model,
		Backend:                  rec.Backend,
		StartedTS:                rec.StartedAt,
		FinishedTS:               rec.FinishedAt,
		DurationMS:               rec.FinishedAt.Sub(rec.StartedAt).Milliseconds(),
		TransactionCount:         int64(rec.TransactionCount),
		Instruction:              nullString(rec.Instruction),
		Outcome:                  string(rec.Outcome),
		FailureKind:              nullString(string(rec.FailureKind)),
		ErrorMessage:             nullString(clip(rec.Error, errorLimit)),
		DiscardedDuplicateGroups: int64(rec.DiscardedDuplicateGroups),
		RawPrefix:                nullString(clip(rec.Raw, rawPrefixLimit)),
		RawGCSURI:                nullString(rawURI),
	}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

// clip cuts s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
