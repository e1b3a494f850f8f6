// Package acquire wraps a single-attempt round source in a bounded-retry,
// exponential-backoff loop.
package acquire

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lmoretti/rounds-watcher/internal/metrics"
	"github.com/lmoretti/rounds-watcher/internal/round"
)

// Config controls the retry loop. Backoff before attempt k+1 is
// InitialBackoff doubled k-1 times; no jitter is applied so the schedule
// is deterministic.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	AttemptTimeout time.Duration
}

// Fetcher drives a round.Source until one attempt yields a valid entry or
// the attempt budget runs out.
type Fetcher struct {
	source round.Source
	cfg    Config
	logger *zap.Logger
	timer  backoff.Timer
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithTimer substitutes the timer used for backoff sleeps. Tests inject a
// recording timer here.
func WithTimer(t backoff.Timer) Option {
	return func(f *Fetcher) { f.timer = t }
}

// New constructs a Fetcher around the given source.
func New(source round.Source, cfg Config, logger *zap.Logger, opts ...Option) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be >= 1")
	}
	if cfg.InitialBackoff <= 0 {
		return nil, fmt.Errorf("initial backoff must be > 0")
	}
	if cfg.AttemptTimeout <= 0 {
		return nil, fmt.Errorf("attempt timeout must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{source: source, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch runs up to MaxAttempts attempts, each under its own timeout, and
// returns the first validly extracted entry. When every attempt fails the
// error is a *round.ExhaustedError carrying the last cause; exhaustion is
// an expected outcome for the caller to handle, not a panic.
func (f *Fetcher) Fetch(ctx context.Context) (round.Entry, error) {
	var (
		entry   round.Entry
		attempt int
		lastErr error
	)

	operation := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
		defer cancel()

		got, err := f.source.Fetch(attemptCtx)
		if err == nil {
			err = round.ValidateEntry(got)
		}
		if err != nil {
			lastErr = err
			metrics.RecordAttempt("failed")
			return err
		}
		entry = got
		metrics.RecordAttempt("ok")
		return nil
	}

	// Fires when a failed attempt will be retried; the final failure is
	// logged on the exhaustion path below.
	notify := func(err error, wait time.Duration) {
		f.logger.Warn("acquisition attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.cfg.MaxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(f.newBackOff(), uint64(f.cfg.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, f.timer); err != nil {
		f.logger.Warn("acquisition attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.cfg.MaxAttempts),
			zap.Error(err),
		)
		return round.Entry{}, &round.ExhaustedError{Attempts: attempt, LastErr: lastErr}
	}
	return entry, nil
}

func (f *Fetcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 365 * 24 * time.Hour
	b.MaxElapsedTime = 0
	return b
}
