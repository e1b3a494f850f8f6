package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lmoretti/rounds-watcher/internal/round"
	"github.com/lmoretti/rounds-watcher/internal/store"
)

func newStore(t *testing.T, path string) (*store.FileStore, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	s, err := store.New(path, zap.New(core))
	require.NoError(t, err)
	return s, logs
}

func TestNewRequiresPath(t *testing.T) {
	_, err := store.New("  ", zap.NewNop())
	assert.Error(t, err)
}

func TestReadMissingFileIsAbsent(t *testing.T) {
	s, logs := newStore(t, filepath.Join(t.TempDir(), "nested", "latest.json"))

	entry, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Zero(t, logs.Len(), "a missing file is expected, not diagnostic-worthy")
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "latest.json")
	s, _ := newStore(t, path)

	want := round.Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}
	require.NoError(t, s.Write(context.Background(), want))

	got, err := s.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "latest.json")
	s, _ := newStore(t, path)

	err := s.Write(context.Background(), round.Entry{Date: "2024-01-15", Invitations: 1, MinScore: 1})
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestWriteIsHumanInspectable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	s, _ := newStore(t, path)

	require.NoError(t, s.Write(context.Background(), round.Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date": "2024-01-15"`)
	assert.Contains(t, string(data), `"invitations": 150`)
	assert.Contains(t, string(data), `"min_score": 410`)
}

func TestReadCorruptContentIsAbsentWithDiagnostic(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "definitely{not json"},
		{"missing field", `{"invitations": 150, "min_score": 410}`},
		{"invalid date", `{"date": "2024-02-30", "invitations": 150, "min_score": 410}`},
		{"zero count", `{"date": "2024-01-15", "invitations": 0, "min_score": 410}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "latest.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			s, logs := newStore(t, path)

			entry, err := s.Read(context.Background())
			require.NoError(t, err, "read must degrade, never fail")
			assert.Nil(t, entry)
			assert.Equal(t, 1, logs.Len(), "corruption must leave a diagnostic")
		})
	}
}

func TestWriteRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	s, _ := newStore(t, path)

	err := s.Write(context.Background(), round.Entry{Date: "nope", Invitations: 1, MinScore: 1})
	var serr *round.StorageError
	require.ErrorAs(t, err, &serr)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed write must not create the file")
}

func TestFailedWriteLeavesPriorEntryIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.json")
	s, _ := newStore(t, path)

	prior := round.Entry{Date: "2024-01-14", Invitations: 100, MinScore: 400}
	require.NoError(t, s.Write(context.Background(), prior))

	// Make the directory unwritable so the temp file cannot be created.
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() {
		_ = os.Chmod(dir, 0o750)
	})

	err := s.Write(context.Background(), round.Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410})
	var serr *round.StorageError
	require.ErrorAs(t, err, &serr)

	require.NoError(t, os.Chmod(dir, 0o750))
	got, readErr := s.Read(context.Background())
	require.NoError(t, readErr)
	require.NotNil(t, got)
	assert.Equal(t, prior, *got, "prior entry must survive a failed write")

	leftovers, globErr := filepath.Glob(filepath.Join(dir, ".latest-*"))
	require.NoError(t, globErr)
	assert.Empty(t, leftovers, "no temp artifacts may remain")
}
