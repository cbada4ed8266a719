package storage

import (
	"context"
	"sync"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// MemoryStore holds the snapshot in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *domain.CatalogSnapshot
	writes   int
}

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReadSnapshot returns a copy of the stored snapshot or the empty default.
func (m *MemoryStore) ReadSnapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogSnapshot{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return domain.EmptySnapshot(), nil
	}
	return cloneSnapshot(*m.snapshot), nil
}

// WriteSnapshot replaces the stored snapshot.
func (m *MemoryStore) WriteSnapshot(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp := cloneSnapshot(snapshot)

	m.mu.Lock()
	m.snapshot = &cp
	m.writes++
	m.mu.Unlock()
	return nil
}

// Writes reports how many snapshots were written.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func cloneSnapshot(s domain.CatalogSnapshot) domain.CatalogSnapshot {
	out := domain.CatalogSnapshot{
		Products:   append([]domain.ProductRecord(nil), s.Products...),
		Categories: append([]domain.CategoryRecord(nil), s.Categories...),
	}
	if s.Store != nil {
		store := *s.Store
		out.Store = &store
	}
	if s.LastSyncedAt != nil {
		synced := *s.LastSyncedAt
		out.LastSyncedAt = &synced
	}
	return out.Normalize()
}
