package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finance-insights/internal/logger"
)

// RetryingGenerator retries a Generator on unreachable-transport failures.
// Timeouts are not retried: a second attempt would double the wait.
type RetryingGenerator struct {
	next       Generator
	maxRetries int
	backoff    time.Duration
}

var _ Generator = (*RetryingGenerator)(nil)

// NewRetryingGenerator wraps next with at most maxRetries extra attempts.
func NewRetryingGenerator(next Generator, maxRetries int, backoff time.Duration) *RetryingGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingGenerator{next: next, maxRetries: maxRetries, backoff: backoff}
}

func (r *RetryingGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Err(lastErr).
				Int("attempt", attempt+1).
				Str("model", model).
				Msg("Retrying generation call")

			select {
			case <-ctx.Done():
				return "", classifyTransport(ctx.Err())
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}

		text, err := r.next.Generate(ctx, prompt, model)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(ctx, err) {
			return "", err
		}
	}
	return "", lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var te *TransportError
	return errors.As(err, &te) && te.Kind == TransportUnreachable
}
