package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// RecentAnalyzer runs an analysis over the most recent filtered transactions.
type RecentAnalyzer interface {
	AnalyzeRecent(ctx context.Context, filter domain.TransactionFilter, instruction, model string) (analysis.Result, error)
}

// NewAnalysisHandler returns a JobHandler that runs analysis jobs. A degraded
// analysis still completes the job; only a failed transaction read is
// returned as an error.
func NewAnalysisHandler(a RecentAnalyzer) JobHandler {
	return func(ctx context.Context, job Job) error {
		aj, ok := job.(*AnalysisJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log := logger.FromContext(ctx).With().Str("job_id", aj.JobID).Logger()
		log.Info().Str("model", aj.Model).Msg("Processing analysis job")

		res, err := a.AnalyzeRecent(ctx, aj.Filter(), aj.Instruction, aj.Model)
		if err != nil {
			log.Error().Err(err).Msg("Analysis job failed")
			return err
		}

		aj.Result = &res
		log.Info().
			Str("run_id", res.RunID).
			Str("outcome", string(res.Outcome)).
			Msg("Analysis job completed")
		return nil
	}
}
