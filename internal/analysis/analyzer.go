package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/google/uuid"
)

const (
	// DefaultBatchCap is the most transactions sent to the model in one run.
	DefaultBatchCap = 50

	// maxLoggedRaw bounds the raw model text written to logs on failure.
	maxLoggedRaw = 500

	recordTimeout = 10 * time.Second
)

// Config controls an Analyzer.
type Config struct {
	DefaultModel     string
	Backend          string // reported on run records, e.g. "ollama"
	Language         string
	BatchCap         int
	VerifyDuplicates bool
}

// Analyzer runs analysis requests end to end. Analyze never returns an
// error; every failure becomes a Failure result.
type Analyzer struct {
	cfg      Config
	pipeline *Pipeline
	recorder Recorder
	metrics  *Metrics
	now      func() time.Time
	newID    func() string
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithRecorder archives every run through r.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithMetrics reports every run to m.
func WithMetrics(m *Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithIDGenerator replaces the run id source.
func WithIDGenerator(newID func() string) Option {
	return func(a *Analyzer) { a.newID = newID }
}

// NewAnalyzer wires the analysis pipeline around gen.
func NewAnalyzer(gen Generator, cfg Config, opts ...Option) *Analyzer {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.BatchCap <= 0 {
		cfg.BatchCap = DefaultBatchCap
	}

	a := &Analyzer{
		cfg:      cfg,
		pipeline: NewAnalysisPipeline(NewPromptBuilder(cfg.Language), gen, cfg.VerifyDuplicates),
		recorder: NopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BatchCap is the configured maximum batch size.
func (a *Analyzer) BatchCap() int {
	return a.cfg.BatchCap
}

// Analyze builds the prompt, calls the generator once (plus any retries the
// generator itself performs) and reconciles the answer.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Result {
	started := a.now()
	runID := a.newID()
	model := a.resolveModel(req.ModelOverride)
	batch := capBatch(req.Transactions, a.cfg.BatchCap)

	log := logger.FromContext(ctx).With().
		Str("run_id", runID).
		Str("model", model).
		Int("transaction_count", len(batch)).
		Logger()

	state := &RunState{
		Request: Request{
			Transactions:  batch,
			Instruction:   req.Instruction,
			ModelOverride: req.ModelOverride,
		},
		Model: model,
	}

	var result Result
	if err := a.pipeline.Execute(ctx, state); err != nil {
		result = failureFor(err)
	} else {
		result = Success(state.Payload)
		result.DiscardedDuplicateGroups = state.DiscardedDuplicates
	}
	result.RunID = runID
	result.Model = model
	result.TransactionCount = len(batch)

	finished := a.now()
	elapsed := finished.Sub(started)

	if result.OK() {
		log.Info().
			Str("outcome", string(result.Outcome)).
			Int("anomalies", len(result.Anomalies)).
			Int("duplicate_groups", len(result.Duplicates)).
			Int("discarded_duplicate_groups", result.DiscardedDuplicateGroups).
			Dur("duration", elapsed).
			Msg("Analysis completed")
	} else {
		log.Error().
			Str("outcome", string(result.Outcome)).
			Str("failure_kind", string(result.FailureKind)).
			Str("error", result.Error).
			Str("raw_prefix", truncate(state.Raw, maxLoggedRaw)).
			Dur("duration", elapsed).
			Msg("Analysis failed")
	}

	a.metrics.observe(result, elapsed)
	a.record(ctx, RunRecord{
		RunID:                    runID,
		Model:                    model,
		Backend:                  a.cfg.Backend,
		StartedAt:                started,
		FinishedAt:               finished,
		TransactionCount:         len(batch),
		Instruction:              req.Instruction,
		Outcome:                  result.Outcome,
		FailureKind:              result.FailureKind,
		Error:                    result.Error,
		Raw:                      state.Raw,
		DiscardedDuplicateGroups: result.DiscardedDuplicateGroups,
	})

	return result
}

func (a *Analyzer) resolveModel(override string) string {
	if override != "" {
		return override
	}
	return a.cfg.DefaultModel
}

// record archives the run even when the request context is already done.
func (a *Analyzer) record(ctx context.Context, rec RunRecord) {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := a.recorder.RecordRun(recCtx, rec); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Str("run_id", rec.RunID).
			Msg("Failed to record analysis run")
	}
}

// capBatch keeps the first n transactions in caller order.
func capBatch(txs []domain.Transaction, n int) []domain.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[:n]
}

func failureFor(err error) Result {
	var te *TransportError
	if errors.As(err, &te) {
		kind := FailureUnreachable
		if te.Kind == TransportTimeout {
			kind = FailureTimeout
		}
		return Failure(kind, te)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return Failure(FailureParse, pe)
	}
	return Failure(FailureInternal, err)
}
