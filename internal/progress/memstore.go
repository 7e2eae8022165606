package progress

import (
	"context"
	"sync"

	"github.com/speakbright/speakbright/pkg/types"
)

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory [Store] for tests and single-process deployments
// without persistence. Safe for concurrent use; appends for the same user are
// serialized by the store's lock.
type MemStore struct {
	mu   sync.RWMutex
	logs map[string][]types.ProgressRecord
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{logs: map[string][]types.ProgressRecord{}}
}

// Append implements [Store].
func (m *MemStore) Append(_ context.Context, userID string, record types.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[userID] = append(m.logs[userID], record)
	return nil
}

// ReadHistory implements [Store]. The returned slice is a copy; callers may
// not mutate stored records through it.
func (m *MemStore) ReadHistory(_ context.Context, userID string) ([]types.ProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.logs[userID]
	out := make([]types.ProgressRecord, len(log))
	copy(out, log)
	return out, nil
}
