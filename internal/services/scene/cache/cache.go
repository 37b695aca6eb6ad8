// Package cache provides a Redis read-through cache in front of a scene store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/courtroom.space/internal/platform/timeouts"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every scene cache key.
const KeyPrefix = "courtroom-space:scene:"

// DefaultTTL bounds how long a cached record may be served.
const DefaultTTL = 10 * time.Minute

// Client is the subset of the go-redis client used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Key returns the cache key of a scene id.
func Key(id string) string {
	return KeyPrefix + strings.TrimSpace(id)
}

// Dial connects to Redis at addr. An empty addr disables caching and returns
// a nil client.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

// Store caches GetScene results of the wrapped store and invalidates them on
// writes. Cache failures are logged and never fail the call.
type Store struct {
	next   storage.SceneStore
	client Client
	ttl    time.Duration
}

// New wraps next. A nil client yields a pass-through store.
func New(next storage.SceneStore, client Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{next: next, client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// CreateScene creates through the wrapped store and drops any stale entry.
func (s *Store) CreateScene(ctx context.Context, record storage.SceneRecord) error {
	if err := s.next.CreateScene(ctx, record); err != nil {
		return err
	}
	s.invalidate(ctx, record.ID)
	return nil
}

// PutScene writes through the wrapped store and drops the cached entry.
func (s *Store) PutScene(ctx context.Context, record storage.SceneRecord) error {
	if err := s.next.PutScene(ctx, record); err != nil {
		return err
	}
	s.invalidate(ctx, record.ID)
	return nil
}

// GetScene serves from Redis when possible, filling the cache on a miss.
func (s *Store) GetScene(ctx context.Context, id string) (storage.SceneRecord, error) {
	if !s.Enabled() {
		return s.next.GetScene(ctx, id)
	}
	key := Key(id)

	cacheCtx, cancel := context.WithTimeout(ctx, timeouts.CacheOp)
	payload, err := s.client.Get(cacheCtx, key).Bytes()
	cancel()
	switch {
	case err == nil:
		record, decodeErr := storage.DecodeRecord(payload)
		if decodeErr == nil {
			return record, nil
		}
		log.Printf("scene cache: decode %s: %v", key, decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("scene cache: get %s: %v", key, err)
	}

	record, err := s.next.GetScene(ctx, id)
	if err != nil {
		return storage.SceneRecord{}, err
	}
	payload, err = storage.EncodeRecord(record)
	if err != nil {
		log.Printf("scene cache: encode %s: %v", key, err)
		return record, nil
	}
	cacheCtx, cancel = context.WithTimeout(ctx, timeouts.CacheOp)
	defer cancel()
	if err := s.client.Set(cacheCtx, key, payload, s.ttl).Err(); err != nil {
		log.Printf("scene cache: set %s: %v", key, err)
	}
	return record, nil
}

// DeleteScene deletes through the wrapped store and drops the cached entry.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	err := s.next.DeleteScene(ctx, id)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		s.invalidate(ctx, id)
	}
	return err
}

// ListScenes is never cached.
func (s *Store) ListScenes(ctx context.Context, opts storage.ListOptions) (storage.ScenePage, error) {
	return s.next.ListScenes(ctx, opts)
}

func (s *Store) invalidate(ctx context.Context, id string) {
	if !s.Enabled() {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, timeouts.CacheOp)
	defer cancel()
	if err := s.client.Del(cacheCtx, Key(id)).Err(); err != nil {
		log.Printf("scene cache: del %s: %v", Key(id), err)
	}
}

var _ storage.SceneStore = (*Store)(nil)
