package weather

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geocoder89/weatherhub/internal/observability"
)

// Store is the snapshot cache backend. Lookups are best-effort: a
// backend failure reads as a miss, never as a fetch failure.
type Store interface {
	Get(ctx context.Context, key string) (*Snapshot, bool)
	Set(ctx context.Context, key string, snap *Snapshot)
}

// CachedFetcher wraps a Fetcher with a short-TTL snapshot cache so that
// repeated identical city queries within the window share one upstream
// call. Negative results are never cached.
type CachedFetcher struct {
	inner   Fetcher
	store   Store
	metrics *observability.Prom
}

func NewCachedFetcher(inner Fetcher, store Store, metrics *observability.Prom) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		store:   store,
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, cityQuery string) (*Snapshot, error) {
	key := cacheKey(cityQuery)

	if snap, ok := c.store.Get(ctx, key); ok {
		c.observeCache("hit")
		return snap, nil
	}

	c.observeCache("miss")

	snap, err := c.inner.Fetch(ctx, cityQuery)

	if err != nil || snap == nil {
		return snap, err
	}

	c.store.Set(ctx, key, snap)

	return snap, nil
}

func (c *CachedFetcher) observeCache(result string) {
	if c.metrics == nil {
		return
	}

	c.metrics.CacheResults.WithLabelValues(result).Inc()
}

// cacheKey normalizes a city query so "London, GB" and "london,gb"
// share an entry.
func cacheKey(cityQuery string) string {
	return "weather:" + strings.ToLower(strings.ReplaceAll(cityQuery, " ", ""))
}

// MemoryStore is an in-process TTL map, for deployments without redis.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	snap *Snapshot
	exp  time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Snapshot, bool) {
	now := time.Now()
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.snap, true
}

func (s *MemoryStore) Set(_ context.Context, key string, snap *Snapshot) {
	s.mu.Lock()
	s.m[key] = memoryEntry{snap: snap, exp: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

// RedisStore keeps snapshots in redis so cache entries are shared
// across processes. Snapshots are stored as JSON with a server-side TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Snapshot, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	var snap Snapshot

	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}

	return &snap, true
}

func (s *RedisStore) Set(ctx context.Context, key string, snap *Snapshot) {
	raw, err := json.Marshal(snap)

	if err != nil {
		return
	}

	// best effort, a write failure just costs an upstream call later
	_ = s.rdb.Set(ctx, key, raw, s.ttl).Err()
}
