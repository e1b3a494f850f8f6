// Package pubsub publishes round notifications to a Google Cloud Pub/Sub
// topic, for deployments where subscribers sit behind a queue instead of
// an HTTP push channel.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// Notifier wraps a Pub/Sub publisher client.
type Notifier struct {
	publisher *pubsub.Publisher
}

// New creates a Notifier for the provided topic publisher.
func New(publisher *pubsub.Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// Notify marshals the entry to JSON and publishes it, waiting for the
// server ack so the caller can log a definite success or failure.
func (n *Notifier) Notify(ctx context.Context, entry round.Entry) error {
	if n.publisher == nil {
		return fmt.Errorf("pubsub publisher is not configured")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	msg := &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event": "round-changed"},
	}
	result := n.publisher.Publish(ctx, msg)
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}
