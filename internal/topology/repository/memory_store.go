package repository

import (
	"context"
	"sync"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
)

// MemoryStore keeps the snapshot as encoded bytes so callers never share
// slices with the stored copy.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Load(ctx context.Context) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	if data == nil {
		doc := domain.NewDocument()
		if err := s.Replace(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}
	return doc, nil
}

func (s *MemoryStore) Replace(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
