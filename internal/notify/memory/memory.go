// Package memory contains an in-memory notifier for tests.
package memory

import (
	"context"
	"sync"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// Notifier records notified entries for inspection.
type Notifier struct {
	mu      sync.RWMutex
	entries []round.Entry
	err     error
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Fail makes every subsequent Notify return err.
func (n *Notifier) Fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Notify records the entry, or returns the configured failure.
func (n *Notifier) Notify(_ context.Context, entry round.Entry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.entries = append(n.entries, entry)
	return nil
}

// Entries returns the recorded notifications.
func (n *Notifier) Entries() []round.Entry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]round.Entry, len(n.entries))
	copy(out, n.entries)
	return out
}
