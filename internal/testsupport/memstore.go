// Package testsupport provides in-memory test doubles for the store layer.
package testsupport

import (
	"context"
	"sort"
	"sync"

	"github.com/gaowanliang/TG-Gallery/internal/models"
	"github.com/gaowanliang/TG-Gallery/internal/store"
)

// MemStore is an in-memory store.DataStore for tests. It reproduces the
// store contract: ListPage orders by ID descending with an exclusive upper
// bound, ListRecent orders by creation time descending.
type MemStore struct {
	mu    sync.Mutex
	items []models.Item

	// FailWith, when set, is returned by every query method.
	FailWith error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Seed replaces the store contents.
func (m *MemStore) Seed(items ...models.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]models.Item(nil), items...)
}

// Close implements store.DataStore.
func (m *MemStore) Close() {}

// Ping implements store.DataStore.
func (m *MemStore) Ping(ctx context.Context) error {
	return m.FailWith
}

// Insert implements store.DataStore.
func (m *MemStore) Insert(ctx context.Context, item *models.Item) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *item)
	return nil
}

// ListPage implements store.DataStore.
func (m *MemStore) ListPage(ctx context.Context, before string, limit int) ([]models.Item, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Item
	for _, item := range m.items {
		if before == "" || item.ID < before {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListRecent implements store.DataStore.
func (m *MemStore) ListRecent(ctx context.Context, limit int) ([]models.Item, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]models.Item(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindByFileID implements store.DataStore.
func (m *MemStore) FindByFileID(ctx context.Context, fileID string) (*models.Item, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.Telegram.FileID == fileID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

// Delete implements store.DataStore.
func (m *MemStore) Delete(ctx context.Context, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
