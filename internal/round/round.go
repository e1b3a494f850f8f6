// Package round defines the healthcare round domain model and the
// interfaces the watcher pipeline is built against.
package round

import (
	"context"
	"fmt"
	"time"
)

// Entry is one healthcare invitation round. Date is the identity key of a
// round; two entries with the same date describe the same round even when
// their counts differ.
type Entry struct {
	Date        string `json:"date"`
	Invitations int    `json:"invitations"`
	MinScore    int    `json:"min_score"`
}

// String renders the entry for log lines and notification bodies.
func (e Entry) String() string {
	return fmt.Sprintf("%s: %d invitations, minimum score %d", e.Date, e.Invitations, e.MinScore)
}

// Source performs one end-to-end attempt at reaching the external page and
// extracting a candidate Entry. Implementations must release any browser or
// network session before returning, on both success and failure.
type Source interface {
	Fetch(ctx context.Context) (Entry, error)
}

// Notifier pushes a detected round to a subscriber channel. Delivery is
// best-effort; callers log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, entry Entry) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
