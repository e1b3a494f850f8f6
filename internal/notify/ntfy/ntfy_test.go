package ntfy_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoretti/rounds-watcher/internal/notify/ntfy"
	"github.com/lmoretti/rounds-watcher/internal/round"
)

func TestNewRequiresTopic(t *testing.T) {
	_, err := ntfy.New(ntfy.Config{})
	assert.Error(t, err)
}

func TestNotifyPublishesEntry(t *testing.T) {
	var (
		gotPath  string
		gotTitle string
		gotBody  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := ntfy.New(ntfy.Config{Server: srv.URL, Topic: "health-rounds"})
	require.NoError(t, err)

	entry := round.Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}
	require.NoError(t, n.Notify(context.Background(), entry))

	assert.Equal(t, "/health-rounds", gotPath)
	assert.NotEmpty(t, gotTitle)
	assert.Contains(t, gotBody, "2024-01-15")
	assert.Contains(t, gotBody, "150")
	assert.Contains(t, gotBody, "410")
}

func TestNotifyReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n, err := ntfy.New(ntfy.Config{Server: srv.URL, Topic: "health-rounds"})
	require.NoError(t, err)

	err = n.Notify(context.Background(), round.Entry{Date: "2024-01-15", Invitations: 1, MinScore: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNotifyReportsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // closed on purpose

	n, err := ntfy.New(ntfy.Config{Server: srv.URL, Topic: "health-rounds"})
	require.NoError(t, err)

	err = n.Notify(context.Background(), round.Entry{Date: "2024-01-15", Invitations: 1, MinScore: 1})
	assert.Error(t, err)
}
