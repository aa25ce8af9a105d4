// Package cache stores computed pace predictions keyed by race.
package cache

import (
	"context"
	"fmt"

	"github.com/yourusername/race-dynamics/internal/config"
	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/models"
)

// Backend names accepted by the cache.backend setting
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store is a prediction cache with explicit invalidation.
// Predictions returned by Get must be treated as read-only.
type Store interface {
	Get(ctx context.Context, key models.RaceKey) (*dynamics.PacePrediction, bool, error)
	Set(ctx context.Context, key models.RaceKey, prediction *dynamics.PacePrediction) error
	// Invalidate removes the prediction of one race and reports how many entries were removed
	Invalidate(ctx context.Context, key models.RaceKey) (int, error)
	// InvalidateDate removes every prediction of races run on the date prefix (see models.RaceKey.DatePrefix)
	InvalidateDate(ctx context.Context, datePrefix string) (int, error)
	Stats() Stats
	Ping(ctx context.Context) error
	Close() error
}

// Stats holds lookup counters of a store
type Stats struct {
	Backend string
	Hits    uint64
	Misses  uint64
	Items   int
}

// HitRatio returns hits over total lookups, zero before the first lookup
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New builds the store selected by the cache configuration
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case BackendMemory, "":
		return NewMemoryStore(cfg.CacheTTL(), cfg.Cache.MaxItems), nil
	case BackendRedis:
		return NewRedisStore(cfg.Cache.Redis, cfg.CacheTTL())
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
