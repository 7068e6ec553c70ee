package stockcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

type memoryEntry struct {
	level     dose.StockLevel
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, productID string) (dose.StockLevel, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[productID]
	s.mu.RUnlock()
	if !ok {
		return dose.StockLevel{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.entries, productID)
		s.mu.Unlock()
		return dose.StockLevel{}, false, nil
	}
	return entry.level, true, nil
}

func (s *MemoryStore) Set(_ context.Context, level dose.StockLevel, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[level.ProductID] = memoryEntry{level: level, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
