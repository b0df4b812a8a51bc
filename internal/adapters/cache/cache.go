// Package cache implements the cache-aside pattern over a key-value
// backend: check the cache first, fall back to the loader on miss, write
// the result back with a TTL.
//
// The cache is an optimization, never a correctness dependency: when the
// backend is unreachable the client falls back to direct loader invocation
// and the call still succeeds.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/okian/nitecap/pkg/logger"
	"github.com/okian/nitecap/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSingleFlight de-duplicates concurrent loads of the same key inside
// this process: concurrent callers for one fingerprint share one loader
// execution. Off by default; without it, concurrent misses on an identical
// key each invoke the loader independently.
func WithSingleFlight() Option {
	return func(c *Client) {
		c.singleFlight = true
	}
}

// Client memoizes loader results under canonical parameter fingerprints.
type Client struct {
	backend      Backend
	log          logger.Logger
	singleFlight bool

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is one outstanding loader execution shared by waiters.
type flight struct {
	done  chan struct{}
	value []byte
	err   error
}

// New constructs a Client over the given backend.
func New(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:  backend,
		inflight: make(map[string]*flight),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetOrCompute returns the cached value for (namespace, params) or runs
// loader, stores its result with a ttlHours expiry, and returns it. On a
// hit the loader is not invoked. On an unreachable backend the loader runs
// directly and caching becomes a no-op for this call.
func GetOrCompute[T any](ctx context.Context, c *Client, namespace string, params map[string]any, ttlHours int, loader func(context.Context) (T, error)) (T, error) {
	var out T

	raw, err := c.GetOrCompute(ctx, namespace, params, ttlHours, func(ctx context.Context) ([]byte, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// GetOrCompute is the raw-bytes form of the cache-aside read. Most callers
// want the typed package-level GetOrCompute instead.
func (c *Client) GetOrCompute(ctx context.Context, namespace string, params map[string]any, ttlHours int, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	key := Fingerprint(namespace, params)

	data, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheHit()
		return data, nil

	case errors.Is(err, ErrMiss):
		metrics.RecordCacheMiss()

	default:
		// Backend unreachable. Serve the caller from the loader directly.
		metrics.RecordCacheFallback()
		c.warn(ctx, "cache backend unreachable, falling back to loader",
			logger.String("key", key), logger.Error(err))
		return loader(ctx)
	}

	if c.singleFlight {
		return c.loadShared(ctx, key, ttlHours, loader)
	}
	return c.loadAndStore(ctx, key, ttlHours, loader)
}

// loadAndStore runs the loader and writes the result back, best effort.
func (c *Client) loadAndStore(ctx context.Context, key string, ttlHours int, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(ttlHours) * time.Hour
	if err := c.backend.Set(ctx, key, value, ttl); err != nil {
		c.warn(ctx, "cache write failed",
			logger.String("key", key), logger.Error(err))
	}
	return value, nil
}

// loadShared funnels concurrent misses for one key into a single loader
// execution. The first caller loads; the rest wait on its result.
func (c *Client) loadShared(ctx context.Context, key string, ttlHours int, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	f.value, f.err = c.loadAndStore(ctx, key, ttlHours, loader)
	close(f.done)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	return f.value, f.err
}

func (c *Client) warn(ctx context.Context, msg string, fields ...logger.Field) {
	if c.log == nil {
		return
	}
	c.log.Warn(ctx, msg, fields...)
}
