package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// DefaultRedisKey holds the snapshot when no key is configured.
const DefaultRedisKey = "postcatalog:snapshot:" + DefaultSnapshotKey

// RedisStore keeps the snapshot under a single key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ ports.SnapshotStore = (*RedisStore)(nil)

// NewRedisStore wires a go-redis client.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// ReadSnapshot returns the stored document or the empty default when the key is absent.
func (r *RedisStore) ReadSnapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.EmptySnapshot(), nil
	}
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeSnapshot(data)
}

// WriteSnapshot replaces the key with a single SET.
func (r *RedisStore) WriteSnapshot(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
