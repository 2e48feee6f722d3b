package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisViewState keeps per-viewer "last seen" watermarks in Redis. Losing
// the store only resets unread counts, so no durability beyond Redis is
// required.
type RedisViewState struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewState constructs the store. A zero TTL keeps watermarks
// until overwritten.
func NewRedisViewState(client *redis.Client, ttl time.Duration) *RedisViewState {
	return &RedisViewState{client: client, ttl: ttl}
}

func viewStateKey(viewerID, category string) string {
	return fmt.Sprintf("viewstate:%s:%s", viewerID, category)
}

// Get returns the viewer's watermark for a category, or nil when none is
// set.
func (r *RedisViewState) Get(ctx context.Context, viewerID, category string) (*time.Time, error) {
	raw, err := r.client.Get(ctx, viewStateKey(viewerID, category)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("viewstate get: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("viewstate parse: %w", err)
	}
	return &ts, nil
}

// Set advances the viewer's watermark.
func (r *RedisViewState) Set(ctx context.Context, viewerID, category string, ts time.Time) error {
	value := ts.UTC().Format(time.RFC3339Nano)
	if err := r.client.Set(ctx, viewStateKey(viewerID, category), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("viewstate set: %w", err)
	}
	return nil
}

// MemoryViewState is the in-process fallback used in tests and when Redis
// is not configured.
type MemoryViewState struct {
	mu    sync.RWMutex
	marks map[string]time.Time
}

// NewMemoryViewState constructs the store.
func NewMemoryViewState() *MemoryViewState {
	return &MemoryViewState{marks: make(map[string]time.Time)}
}

func (m *MemoryViewState) Get(ctx context.Context, viewerID, category string) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.marks[viewStateKey(viewerID, category)]
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

func (m *MemoryViewState) Set(ctx context.Context, viewerID, category string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[viewStateKey(viewerID, category)] = ts
	return nil
}
