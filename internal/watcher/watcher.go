// Package watcher sequences one run of the pipeline: read the prior
// entry, acquire the current one, compare, and on a change notify the
// subscriber channel and persist the new entry.
package watcher

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lmoretti/rounds-watcher/internal/metrics"
	"github.com/lmoretti/rounds-watcher/internal/round"
)

// State names the terminal condition of a run.
type State string

// Terminal states. Aborted is reached from acquisition exhaustion, an
// unexpected comparison failure, or a failed persist.
const (
	StateDone    State = "done"
	StateAborted State = "aborted"
)

// Outcome labels for logs and metrics.
const (
	outcomeChanged          = "changed"
	outcomeUnchanged        = "unchanged"
	outcomeAcquireExhausted = "acquire_exhausted"
	outcomeCompareFailed    = "compare_failed"
	outcomePersistFailed    = "persist_failed"
)

// Store is the persistence boundary the run drives. Read returns
// (nil, nil) when no prior entry is known; Write fails loudly so the run
// can distinguish "change detected but not recorded" from success.
type Store interface {
	Read(ctx context.Context) (*round.Entry, error)
	Write(ctx context.Context, entry round.Entry) error
}

// Fetcher is the retrying acquisition routine.
type Fetcher interface {
	Fetch(ctx context.Context) (round.Entry, error)
}

// Report describes how a run ended.
type Report struct {
	State   State
	Outcome round.Outcome
	RunID   string
}

// Watcher executes runs. One run completes or fails before another
// begins; the watcher holds no mutable state between runs, so the
// persisted file is the only cross-run memory.
type Watcher struct {
	store    Store
	fetcher  Fetcher
	notifier round.Notifier
	clock    round.Clock
	logger   *zap.Logger
}

// New wires a Watcher from its collaborators.
func New(store Store, fetcher Fetcher, notifier round.Notifier, clock round.Clock, logger *zap.Logger) (*Watcher, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Run drives one pass of the state machine:
//
//	ReadPrior -> Acquire -> Compare -> {Unchanged | ChangedNotifyThenPersist} -> Done
//
// with Aborted reachable from Acquire and from the persist step. The
// notification deliberately goes out before the persist: a change that
// fails to record is still announced, and the run failure tells the
// scheduler to retry the whole run later.
func (w *Watcher) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	logger := w.logger.With(zap.String("run_id", runID))
	report := Report{RunID: runID}

	// ReadPrior. Absent is a valid input to the comparison, and a corrupt
	// file already degraded to absent inside the store.
	prior, err := w.store.Read(ctx)
	if err != nil {
		// Reads degrade to absent by contract; treat a surprise the same way.
		logger.Warn("prior read failed, proceeding with no prior", zap.Error(err))
		prior = nil
	}

	// Acquire.
	current, err := w.fetcher.Fetch(ctx)
	if err != nil {
		report.State = StateAborted
		metrics.RecordRun(outcomeAcquireExhausted)
		logger.Error("run aborted: acquisition exhausted", zap.Error(err))
		return report, fmt.Errorf("acquisition exhausted: %w", err)
	}

	// Compare. Acquired data was validated on the way in, so a failure
	// here is a defect worth aborting on, not something to paper over.
	outcome, err := round.Compare(prior, current)
	if err != nil {
		report.State = StateAborted
		metrics.RecordRun(outcomeCompareFailed)
		logger.Error("run aborted: comparison failed", zap.Error(err))
		return report, fmt.Errorf("comparison failed: %w", err)
	}
	report.Outcome = outcome

	if !outcome.Changed {
		report.State = StateDone
		metrics.RecordRun(outcomeUnchanged)
		logger.Info("no change detected",
			zap.String("date", outcome.Current.Date),
		)
		return report, nil
	}

	logger.Info("change detected",
		zap.String("date", outcome.Current.Date),
		zap.Int("invitations", outcome.Current.Invitations),
		zap.Int("min_score", outcome.Current.MinScore),
		zap.Stringp("previous_date", previousDate(outcome.Previous)),
	)

	// Notify before persisting. A push failure is logged and dropped; it
	// must never block the write or fail the run.
	if err := w.notifier.Notify(ctx, outcome.Current); err != nil {
		metrics.RecordNotifyFailure()
		logger.Warn("notification failed", zap.Error(err))
	}

	if err := w.store.Write(ctx, outcome.Current); err != nil {
		report.State = StateAborted
		metrics.RecordRun(outcomePersistFailed)
		logger.Error("run aborted: persist failed after detected change", zap.Error(err))
		return report, fmt.Errorf("persist failed after detected change: %w", err)
	}

	report.State = StateDone
	metrics.RecordRun(outcomeChanged)
	metrics.RecordChange(float64(w.clock.Now().Unix()))
	logger.Info("new round recorded", zap.String("date", outcome.Current.Date))
	return report, nil
}

func previousDate(prev *round.Entry) *string {
	if prev == nil {
		return nil
	}
	return &prev.Date
}
