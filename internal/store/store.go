// Package store persists the single latest-known round entry as a small
// JSON file, with an atomic write protocol so readers and crashes never
// observe a half-written state.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// FileStore owns the persisted entry at a fixed path. No other component
// writes to that location.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// New creates a FileStore for the given file path.
func New(path string, logger *zap.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Read returns the persisted entry, or (nil, nil) when nothing usable is
// on disk. A missing file is the expected first-run case. Malformed bytes
// and entries that fail validation degrade to absent with a diagnostic:
// corrupt state must never take the pipeline down.
func (s *FileStore) Read(_ context.Context) (*round.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Warn("state file unreadable, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	var entry round.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("state file is not valid JSON, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	if err := round.ValidateEntry(entry); err != nil {
		s.logger.Warn("state file holds a malformed entry, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	return &entry, nil
}

// Write durably replaces the persisted entry. The new content goes to a
// temp file in the same directory first, then a single rename moves it
// onto the final path, so the prior entry stays intact until the replace
// happens in one step. Parent directories are created as needed.
func (s *FileStore) Write(_ context.Context, entry round.Entry) error {
	if err := round.ValidateEntry(entry); err != nil {
		return &round.StorageError{Op: "write", Path: s.path, Err: err}
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return &round.StorageError{Op: "write", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &round.StorageError{Op: "write", Path: s.path, Err: fmt.Errorf("create parent directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".latest-*.json.tmp")
	if err != nil {
		return &round.StorageError{Op: "write", Path: s.path, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		removeQuietly(tmpPath)
		return &round.StorageError{Op: "write", Path: s.path, Err: err}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		removeQuietly(tmpPath)
		return &round.StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck // sync error takes precedence
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

// removeQuietly is best-effort cleanup of a temp artifact.
func removeQuietly(path string) {
	_ = os.Remove(path)
}
