package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// updateMaxRetries bounds the optimistic retry loop in Update. A namespace under
// heavy contention will see transaction aborts; past this count the caller gets
// an error instead of spinning.
const updateMaxRetries = 10

// Store defines the interface for the shared cache tier. Values are opaque
// strings: counters are stored as decimal text, membership filters as their
// binary encoding.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	GetAll(ctx context.Context, keys []string) (map[string]string, error)
	PutAll(ctx context.Context, values map[string]string) error
	// Update runs a fetch-mutate-store cycle over keys as a single optimistic
	// transaction. mutate receives the current values (absent keys omitted) and
	// returns the full set of values to write back. The cycle retries when a
	// concurrent writer touches any of the keys between fetch and store.
	Update(ctx context.Context, keys []string, mutate func(current map[string]string) (map[string]string, error)) error
}

// RedisStore implements Store on Redis
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get retrieves a single value; the second return is false when the key is absent
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Put stores a single value without expiry
func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// GetAll retrieves values for keys in one round-trip; absent keys are omitted
// from the result
func (s *RedisStore) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for cache key %s", v, keys[i])
		}
		out[keys[i]] = str
	}
	return out, nil
}

// PutAll stores all values in one round-trip
func (s *RedisStore) PutAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return s.rdb.MSet(ctx, pairs...).Err()
}

// Update implements the optimistic fetch-mutate-store cycle with WATCH/MULTI/EXEC.
// The write is rejected and retried when any watched key changes mid-cycle, so
// concurrent mutations of the same namespace cannot silently overwrite each other.
func (s *RedisStore) Update(ctx context.Context, keys []string, mutate func(current map[string]string) (map[string]string, error)) error {
	txf := func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, keys...).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current := make(map[string]string, len(keys))
		for i, v := range vals {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				current[keys[i]] = str
			}
		}

		updated, err := mutate(current)
		if err != nil {
			return err
		}
		if len(updated) == 0 {
			return nil
		}

		pairs := make([]interface{}, 0, len(updated)*2)
		for k, v := range updated {
			pairs = append(pairs, k, v)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.MSet(ctx, pairs...)
			return nil
		})
		return err
	}

	for i := 0; i < updateMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("cache update aborted after %d conflicting writes on %v", updateMaxRetries, keys)
}
