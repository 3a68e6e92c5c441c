package repository

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey      = "topology:snapshot" // JSON document
	snapshotEventChannel = "topology:events"   // Pub/Sub channel, payload is the new document
)

// RedisStore keeps the whole document under a single key. SET replaces the
// value atomically, so GET never observes a partial write.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore. An empty key uses DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Load(ctx context.Context) (*domain.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return s.initialize(ctx)
	}
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", fmt.Errorf("failed to get %s: %w", s.key, err))
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}
	return doc, nil
}

// initialize writes an empty document unless another writer got there first.
func (s *RedisStore) initialize(ctx context.Context) (*domain.Document, error) {
	empty, err := encodeDocument(domain.NewDocument())
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", err)
	}
	if err := s.client.SetNX(ctx, s.key, empty, 0).Err(); err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", fmt.Errorf("failed to set %s: %w", s.key, err))
	}

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", fmt.Errorf("failed to get %s: %w", s.key, err))
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", err)
	}
	return doc, nil
}

func (s *RedisStore) Replace(ctx context.Context, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return domain.StoreUnavailable("replace snapshot", fmt.Errorf("failed to set %s: %w", s.key, err))
	}

	// Subscribers are informational; a failed publish does not undo the write.
	s.client.Publish(ctx, s.EventChannel(), data)
	return nil
}

// EventChannel is the Pub/Sub channel that receives each replaced document.
func (s *RedisStore) EventChannel() string {
	if s.key == DefaultRedisKey {
		return snapshotEventChannel
	}
	return fmt.Sprintf("%s:events", s.key)
}
