package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// pollUntil waits interval, then calls fetch, up to attempts times, stopping
// as soon as fetch reports its value is present. Individual fetch errors are
// tolerated: they only consume attempts. Exhausting the attempt bound is not
// an error; err is non-nil only when the context is cancelled.
func pollUntil[T any](ctx context.Context, attempts int, interval time.Duration, sleep SleepFunc, fetch func(context.Context) (T, bool, error)) (result T, made int, found bool, err error) {
	var zero T
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := sleep(ctx, interval); err != nil {
			return zero, attempt - 1, false, err
		}

		value, ok, ferr := fetch(ctx)
		if ferr != nil {
			if ctx.Err() != nil {
				return zero, attempt, false, ctx.Err()
			}
			log.Debug().Err(ferr).Int("attempt", attempt).Msg("poll fetch failed")
			continue
		}
		if ok {
			return value, attempt, true, nil
		}
	}
	return zero, attempts, false, nil
}
