package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/config"
	"github.com/yourusername/race-dynamics/internal/dynamics"
)

// testRedisAddrEnv names the redis server used by the integration tests
const testRedisAddrEnv = "RACE_DYNAMICS_TEST_REDIS_ADDR"

func testConfig(backend string) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Backend:    backend,
			TTLSeconds: 60,
			MaxItems:   10,
		},
	}
}

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv(testRedisAddrEnv)
	if addr == "" {
		t.Skipf("%s not set, skipping redis tests", testRedisAddrEnv)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisStoreWithClient(client, "race-dynamics-test:"+t.Name()+":", time.Minute)
	require.NoError(t, store.Ping(context.Background()))

	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), store.prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		_ = store.Close()
	})
	return store
}

// TestRedisStoreKey tests key namespacing
func TestRedisStoreKey(t *testing.T) {
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "", time.Minute)
	defer store.Close()

	assert.Equal(t, "race-dynamics:prediction:2024:0526:TOKYO:11", store.key(raceKey(t, "2024-05-26", "tokyo", 11)))
}

// TestRedisStoreRoundTrip tests set, get and invalidation against a live server
func TestRedisStoreRoundTrip(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	key := raceKey(t, "2024-05-26", "tokyo", 11)
	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	front := 35.2
	pred := prediction(key, dynamics.PaceHigh)
	pred.AvgFrontSectionTime = &front
	require.NoError(t, store.Set(ctx, key, pred))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, dynamics.PaceHigh, got.ExpectedPace)
	require.NotNil(t, got.AvgFrontSectionTime)
	assert.Equal(t, 35.2, *got.AvgFrontSectionTime)

	removed, err := store.Invalidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

// TestRedisStoreInvalidateDate tests date-scoped invalidation against a live server
func TestRedisStoreInvalidateDate(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	a := raceKey(t, "2024-05-26", "tokyo", 1)
	b := raceKey(t, "2024-05-26", "kyoto", 2)
	c := raceKey(t, "2024-05-27", "tokyo", 1)
	require.NoError(t, store.Set(ctx, a, prediction(a, dynamics.PaceSlow)))
	require.NoError(t, store.Set(ctx, b, prediction(b, dynamics.PaceSlow)))
	require.NoError(t, store.Set(ctx, c, prediction(c, dynamics.PaceSlow)))

	removed, err := store.InvalidateDate(ctx, a.DatePrefix())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, found, err := store.Get(ctx, c)
	require.NoError(t, err)
	assert.True(t, found)
}
