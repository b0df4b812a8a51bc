package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is the key-value service behind the cache-aside client. Entries
// are written wholesale and expire on their own; there is no partial update.
type Backend interface {
	// Get returns the stored value, ErrMiss when the key is absent or
	// expired, or a transport error when the backend is unreachable.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisBackend implements Backend on a Redis client.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend wraps an existing Redis client.
func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

// memoryEntry is one stored value with its absolute expiry.
type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryBackend implements Backend in process memory. It backs tests and
// cache-disabled runs where no Redis is configured.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption applies a configuration option to the MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithMemoryClock overrides the time source used for expiry checks.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(b *MemoryBackend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Get implements Backend.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	e, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok || b.now().After(e.expires) {
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set implements Backend.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	b.entries[key] = memoryEntry{value: value, expires: b.now().Add(ttl)}
	b.mu.Unlock()
	return nil
}
