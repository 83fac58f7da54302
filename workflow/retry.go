package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// retryLinear calls fn up to attempts times, waiting backoff, 2*backoff,
// 3*backoff, ... between tries. It returns the number of attempts made and
// the last error; a nil error means one of the attempts succeeded. When the
// context is cancelled during a wait, the context error is returned.
func retryLinear(ctx context.Context, attempts int, backoff time.Duration, sleep SleepFunc, fn func(context.Context) error) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max_attempts", attempts).Msg("attempt failed")
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, time.Duration(attempt)*backoff); err != nil {
			return attempt, err
		}
	}
	return attempts, lastErr
}
