package analysis

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Outcome tags an analysis Result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// FailureKind says why an analysis degraded to a Failure result.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTimeout     FailureKind = "timeout"
	FailureUnreachable FailureKind = "unreachable"
	FailureParse       FailureKind = "parse"
	FailureInternal    FailureKind = "internal" // failed before the model was called
)

// Narrative defaults shown to the user when an analysis fails.
const (
	FailureSummary = "AI Analysis failed."
	FailureAdvice  = "Please try again later."
)

// Request is one bounded analysis batch.
type Request struct {
	Transactions  []domain.Transaction
	Instruction   string // optional free-text user directive
	ModelOverride string // optional; wins over the configured default
}

// Payload is the structured analysis recovered from model output.
type Payload struct {
	Summary    string             `json:"summary"`
	Anomalies  []Anomaly          `json:"anomalies"`
	Duplicates [][]DuplicateEntry `json:"duplicates"`
	Advice     string             `json:"advice"`
}

// Anomaly is a transaction the model flagged as unusual spending.
type Anomaly struct {
	ID          *int64  `json:"id,omitempty"`
	Date        string  `json:"date,omitempty"`
	Description string  `json:"desc"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"cat,omitempty"`
	Platform    string  `json:"platform,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// DuplicateEntry is one member of a model-claimed duplicate group.
type DuplicateEntry struct {
	Description string  `json:"desc"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`

	amount decimal.Decimal
	// amountValid is false when the model sent something that is not a number.
	amountValid bool
}

// Result is the uniformly shaped outcome of Analyze. Anomalies and
// Duplicates are never nil, whichever outcome is set.
type Result struct {
	Outcome    Outcome            `json:"outcome"`
	Summary    string             `json:"summary"`
	Anomalies  []Anomaly          `json:"anomalies"`
	Duplicates [][]DuplicateEntry `json:"duplicates"`
	Advice     string             `json:"advice"`

	Error       string      `json:"error,omitempty"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`

	RunID                    string `json:"run_id,omitempty"`
	Model                    string `json:"model,omitempty"`
	TransactionCount         int    `json:"transaction_count"`
	DiscardedDuplicateGroups int    `json:"discarded_duplicate_groups,omitempty"`
}

// Success wraps a reconciled payload.
func Success(p Payload) Result {
	r := Result{
		Outcome:    OutcomeSuccess,
		Summary:    p.Summary,
		Anomalies:  p.Anomalies,
		Duplicates: p.Duplicates,
		Advice:     p.Advice,
	}
	r.normalize()
	return r
}

// Failure builds a degraded result carrying the cause as diagnostic text.
func Failure(kind FailureKind, err error) Result {
	r := Result{
		Outcome:     OutcomeFailure,
		Summary:     FailureSummary,
		Advice:      FailureAdvice,
		FailureKind: kind,
	}
	if err != nil {
		r.Error = err.Error()
	}
	r.normalize()
	return r
}

// OK reports whether the analysis succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func (r *Result) normalize() {
	if r.Anomalies == nil {
		r.Anomalies = []Anomaly{}
	}
	if r.Duplicates == nil {
		r.Duplicates = [][]DuplicateEntry{}
	}
	for i, g := range r.Duplicates {
		if g == nil {
			r.Duplicates[i] = []DuplicateEntry{}
		}
	}
}
