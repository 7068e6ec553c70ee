package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/yanqian/agrocalc/internal/domain/history"
)

// MemoryStorage keeps reports in memory when no bucket is configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (history.StoredObject, error) {
	hash := md5.Sum(data)
	stored := append([]byte(nil), data...)
	s.mu.Lock()
	s.blobs[key] = stored
	s.mu.Unlock()
	return history.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}, nil
}

// Object returns a copy of a stored report.
func (s *MemoryStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

var _ history.ObjectStorage = (*MemoryStorage)(nil)
