// Package noop provides a notifier that discards every notification.
package noop

import (
	"context"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// Notifier drops notifications. Useful when only persistence matters.
type Notifier struct{}

// New returns a no-op Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Notify does nothing.
func (*Notifier) Notify(context.Context, round.Entry) error {
	return nil
}
