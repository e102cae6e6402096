package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
)

// MemoryStore keeps entries in process; used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]persist.CatalogEntry
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]persist.CatalogEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, e persist.CatalogEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = e
	s.order = append(s.order, id)
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (persist.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return persist.CatalogEntry{}, fmt.Errorf("%w: catalog entry %s", common.ErrNotFound, id)
	}
	return e, nil
}

// Len reports how many entries were saved.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
