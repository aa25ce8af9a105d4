package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/metrics"
	"github.com/yourusername/race-dynamics/internal/models"
)

// MemoryStore provides in-process caching of predictions
type MemoryStore struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxItems  int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewMemoryStore creates a new in-memory store. A maxItems of zero means unbounded.
func NewMemoryStore(ttl time.Duration, maxItems int) *MemoryStore {
	return &MemoryStore{
		cache:    gocache.New(ttl, ttl*2),
		ttl:      ttl,
		maxItems: maxItems,
	}
}

// Get retrieves a cached prediction
func (s *MemoryStore) Get(ctx context.Context, key models.RaceKey) (*dynamics.PacePrediction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, found := s.cache.Get(key.String()); found {
		if pred, ok := item.(*dynamics.PacePrediction); ok {
			s.hitCount++
			s.updateMetrics(true)
			return pred, true, nil
		}
	}

	s.missCount++
	s.updateMetrics(false)
	return nil, false, nil
}

// Set stores a prediction
func (s *MemoryStore) Set(ctx context.Context, key models.RaceKey, prediction *dynamics.PacePrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if s.maxItems > 0 && s.cache.ItemCount() >= s.maxItems {
		if _, exists := s.cache.Get(k); !exists {
			s.cache.DeleteExpired()
			if s.cache.ItemCount() >= s.maxItems {
				s.evictOldest()
			}
		}
	}

	s.cache.Set(k, prediction, s.ttl)
	return nil
}

// evictOldest removes the entry closest to expiry
func (s *MemoryStore) evictOldest() {
	var (
		oldestKey string
		oldestExp int64
	)
	for k, item := range s.cache.Items() {
		if oldestKey == "" || item.Expiration < oldestExp || (item.Expiration == oldestExp && k < oldestKey) {
			oldestKey = k
			oldestExp = item.Expiration
		}
	}
	if oldestKey != "" {
		s.cache.Delete(oldestKey)
	}
}

// Invalidate removes the prediction of one race
func (s *MemoryStore) Invalidate(ctx context.Context, key models.RaceKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if _, found := s.cache.Get(k); !found {
		return 0, nil
	}
	s.cache.Delete(k)
	return 1, nil
}

// InvalidateDate removes all predictions of races on the given date
func (s *MemoryStore) InvalidateDate(ctx context.Context, datePrefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := datePrefix + ":"
	removed := 0
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Delete(k)
			removed++
		}
	}
	return removed, nil
}

// Clear flushes the entire cache
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Flush()
	s.hitCount = 0
	s.missCount = 0
}

// Stats returns cache statistics
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statsLocked()
}

func (s *MemoryStore) statsLocked() Stats {
	return Stats{
		Backend: BackendMemory,
		Hits:    s.hitCount,
		Misses:  s.missCount,
		Items:   s.cache.ItemCount(),
	}
}

// Ping always succeeds for the in-process store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// updateMetrics updates Prometheus metrics. Caller holds the lock.
func (s *MemoryStore) updateMetrics(hit bool) {
	stats := s.statsLocked()
	metrics.RecordCacheLookup(BackendMemory, hit)
	metrics.UpdateCacheStats(BackendMemory, stats.HitRatio(), stats.Items)
}
