package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/race-dynamics/internal/config"
	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/metrics"
	"github.com/yourusername/race-dynamics/internal/models"
)

const (
	defaultKeyPrefix = "race-dynamics:prediction:"
	scanBatchSize    = 200
)

// RedisStore shares predictions between processes through redis.
// Values are stored as JSON.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewRedisStore connects to the configured redis server
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(k models.RaceKey) string {
	return s.prefix + k.String()
}

// Get retrieves a cached prediction
func (s *RedisStore) Get(ctx context.Context, key models.RaceKey) (*dynamics.PacePrediction, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.recordLookup(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached prediction: %w", err)
	}

	var pred dynamics.PacePrediction
	if err := json.Unmarshal(data, &pred); err != nil {
		// A value we cannot decode is treated as a miss and dropped
		s.client.Del(ctx, s.key(key))
		s.recordLookup(false)
		return nil, false, nil
	}

	s.recordLookup(true)
	return &pred, true, nil
}

// Set stores a prediction with the store TTL
func (s *RedisStore) Set(ctx context.Context, key models.RaceKey, prediction *dynamics.PacePrediction) error {
	data, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache prediction: %w", err)
	}
	return nil
}

// Invalidate removes the prediction of one race
func (s *RedisStore) Invalidate(ctx context.Context, key models.RaceKey) (int, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return int(n), nil
}

// InvalidateDate removes all predictions of races on the given date
func (s *RedisStore) InvalidateDate(ctx context.Context, datePrefix string) (int, error) {
	pattern := s.prefix + datePrefix + ":*"
	removed := 0

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to invalidate date %s: %w", datePrefix, err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed, nil
}

// Stats returns lookup counters. Items is not tracked for redis.
func (s *RedisStore) Stats() Stats {
	return Stats{
		Backend: BackendRedis,
		Hits:    s.hitCount.Load(),
		Misses:  s.missCount.Load(),
	}
}

// Ping checks the redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) recordLookup(hit bool) {
	if hit {
		s.hitCount.Add(1)
	} else {
		s.missCount.Add(1)
	}
	metrics.RecordCacheLookup(BackendRedis, hit)
	metrics.UpdateCacheStats(BackendRedis, s.Stats().HitRatio(), 0)
}
