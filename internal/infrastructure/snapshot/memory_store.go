package snapshot

import (
	"context"
	"sync"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

// MemoryStore is an in-process snapshot store for tests and single-instance
// deployments without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	items    []catalog.Item
	balances []catalog.CustomerBalance
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ catalog.SnapshotStore = (*MemoryStore)(nil)

// ReplaceCatalog implements catalog.SnapshotStore.
func (s *MemoryStore) ReplaceCatalog(_ context.Context, items []catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]catalog.Item(nil), items...)
	return nil
}

// Catalog implements catalog.SnapshotStore.
func (s *MemoryStore) Catalog(_ context.Context) ([]catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// ReplaceBalances implements catalog.SnapshotStore.
func (s *MemoryStore) ReplaceBalances(_ context.Context, balances []catalog.CustomerBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append([]catalog.CustomerBalance(nil), balances...)
	return nil
}

// Balances implements catalog.SnapshotStore.
func (s *MemoryStore) Balances(_ context.Context) ([]catalog.CustomerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.CustomerBalance, len(s.balances))
	copy(out, s.balances)
	return out, nil
}
