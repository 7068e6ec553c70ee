package historyrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/agrocalc/internal/domain/history"
)

const defaultMemoryCapacity = 5000

// MemoryRepository keeps the most recent records in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	records  []history.Record
	capacity int
}

// NewMemoryRepository constructs a bounded in-memory repository.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryRepository{capacity: capacity}
}

// Save appends a record, evicting the oldest once capacity is reached.
func (r *MemoryRepository) Save(_ context.Context, record history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if over := len(r.records) - r.capacity; over > 0 {
		r.records = append([]history.Record(nil), r.records[over:]...)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *MemoryRepository) ListRecent(_ context.Context, limit int) ([]history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]history.Record, len(r.records))
	copy(out, r.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ history.Repository = (*MemoryRepository)(nil)
