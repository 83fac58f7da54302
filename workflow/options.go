package workflow

import (
	"context"
	"time"
)

const (
	defaultMaxUploadAttempts = 3
	defaultUploadBackoff     = 2 * time.Second
	defaultPollInterval      = time.Second
	defaultMaxPollAttempts   = 30
	defaultMaxImageDimension = 1080
	defaultJPEGQuality       = 80
)

// SleepFunc is a context-aware delay. It returns ctx.Err() when the context
// is cancelled before the duration elapses.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options tunes a submission workflow. The zero value selects the defaults.
type Options struct {
	MaxUploadAttempts int
	UploadBackoff     time.Duration
	PollInterval      time.Duration
	MaxPollAttempts   int
	MaxImageDimension int
	JPEGQuality       int

	// Sleep is used between upload retries and between poll attempts.
	// Tests inject an instant sleep here.
	Sleep SleepFunc
}

func (o Options) withDefaults() Options {
	if o.MaxUploadAttempts <= 0 {
		o.MaxUploadAttempts = defaultMaxUploadAttempts
	}
	if o.UploadBackoff <= 0 {
		o.UploadBackoff = defaultUploadBackoff
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.MaxPollAttempts <= 0 {
		o.MaxPollAttempts = defaultMaxPollAttempts
	}
	if o.MaxImageDimension <= 0 {
		o.MaxImageDimension = defaultMaxImageDimension
	}
	if o.JPEGQuality <= 0 {
		o.JPEGQuality = defaultJPEGQuality
	}
	if o.Sleep == nil {
		o.Sleep = ctxSleep
	}
	return o
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
