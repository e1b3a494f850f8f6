// Package ntfy pushes round notifications to an ntfy topic over HTTP.
package ntfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// DefaultServer is the public ntfy instance.
const DefaultServer = "https://ntfy.sh"

// Config identifies the topic to publish to.
type Config struct {
	Server  string
	Topic   string
	Timeout time.Duration
}

// Notifier implements round.Notifier with a fire-and-forget HTTP push.
type Notifier struct {
	cfg    Config
	client *http.Client
}

// New creates a Notifier for the configured topic.
func New(cfg Config) (*Notifier, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("ntfy topic is required")
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Notify publishes the new round to the topic. Errors are for the caller
// to log; delivery is best-effort by contract.
func (n *Notifier) Notify(ctx context.Context, entry round.Entry) error {
	url := strings.TrimRight(n.cfg.Server, "/") + "/" + n.cfg.Topic
	body := strings.NewReader(entry.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("Title", "New healthcare round announced")
	req.Header.Set("Tags", "hospital")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to ntfy: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body is drained best-effort

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("ntfy responded %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
