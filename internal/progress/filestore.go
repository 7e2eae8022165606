package progress

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/speakbright/speakbright/pkg/types"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// fileRecord is one JSON line in the file store: a progress record tagged
// with its owning user.
type fileRecord struct {
	UserID string `json:"user_id"`
	types.ProgressRecord
}

// FileStore persists progress logs as append-only JSON lines in a local
// file, suitable for single-node deployments and local development. Safe for
// concurrent use; the lock serializes appends so concurrent sessions for the
// same user cannot interleave partial lines.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path. The file is
// created on first append if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append implements [Store].
func (fs *FileStore) Append(_ context.Context, userID string, record types.ProgressRecord) error {
	data, err := json.Marshal(fileRecord{UserID: userID, ProgressRecord: record})
	if err != nil {
		return fmt.Errorf("progress: marshal record: %w", err)
	}
	data = append(data, '\n')

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("progress: %w: open file: %w", ErrHistoryUnavailable, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("progress: %w: write: %w", ErrHistoryUnavailable, err)
	}
	return nil
}

// ReadHistory implements [Store]. A missing file is an empty history, not an
// error.
func (fs *FileStore) ReadHistory(_ context.Context, userID string) ([]types.ProgressRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("progress: %w: open file: %w", ErrHistoryUnavailable, err)
	}
	defer f.Close()

	var history []types.ProgressRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec fileRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("progress: %w: decode line: %w", ErrHistoryUnavailable, err)
		}
		if rec.UserID == userID {
			history = append(history, rec.ProgressRecord)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("progress: %w: scan: %w", ErrHistoryUnavailable, err)
	}
	return history, nil
}
