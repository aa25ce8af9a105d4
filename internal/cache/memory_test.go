package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/models"
)

func raceKey(t *testing.T, date, venue string, n int) models.RaceKey {
	t.Helper()
	key, err := models.ParseRaceKey(date, venue, n)
	require.NoError(t, err)
	return key
}

func prediction(key models.RaceKey, pace dynamics.Pace) *dynamics.PacePrediction {
	return &dynamics.PacePrediction{
		RaceKey:      key.String(),
		ExpectedPace: pace,
		FrontRunners: 2,
		Predictions:  []dynamics.PositionPrediction{},
	}
}

// TestMemoryStoreGetMiss tests lookups of missing keys
func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore(time.Hour, 100)
	defer store.Clear()

	pred, found, err := store.Get(context.Background(), raceKey(t, "2024-05-26", "tokyo", 11))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, pred)
	assert.Equal(t, uint64(1), store.Stats().Misses)
}

// TestMemoryStoreSetGet tests storing and reading back a prediction
func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(time.Hour, 100)
	defer store.Clear()
	ctx := context.Background()

	key := raceKey(t, "2024-05-26", "tokyo", 11)
	require.NoError(t, store.Set(ctx, key, prediction(key, dynamics.PaceHigh)))

	pred, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, dynamics.PaceHigh, pred.ExpectedPace)
	assert.Equal(t, "2024:0526:TOKYO:11", pred.RaceKey)

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Items)
	assert.Equal(t, 1.0, stats.HitRatio())
}

// TestMemoryStoreInvalidate tests single-race invalidation
func TestMemoryStoreInvalidate(t *testing.T) {
	store := NewMemoryStore(time.Hour, 100)
	defer store.Clear()
	ctx := context.Background()

	key := raceKey(t, "2024-05-26", "tokyo", 11)
	other := raceKey(t, "2024-05-26", "tokyo", 10)
	require.NoError(t, store.Set(ctx, key, prediction(key, dynamics.PaceSlow)))
	require.NoError(t, store.Set(ctx, other, prediction(other, dynamics.PaceSlow)))

	removed, err := store.Invalidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = store.Invalidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, found, _ := store.Get(ctx, key)
	assert.False(t, found)
	_, found, _ = store.Get(ctx, other)
	assert.True(t, found)
}

// TestMemoryStoreInvalidateDate tests that only races on the given day are removed
func TestMemoryStoreInvalidateDate(t *testing.T) {
	store := NewMemoryStore(time.Hour, 100)
	defer store.Clear()
	ctx := context.Background()

	sameDay := []models.RaceKey{
		raceKey(t, "2024-05-26", "tokyo", 1),
		raceKey(t, "2024-05-26", "tokyo", 11),
		raceKey(t, "2024-05-26", "kyoto", 5),
	}
	nextDay := raceKey(t, "2024-05-27", "tokyo", 1)

	for _, k := range append(sameDay, nextDay) {
		require.NoError(t, store.Set(ctx, k, prediction(k, dynamics.PaceMiddle)))
	}

	removed, err := store.InvalidateDate(ctx, sameDay[0].DatePrefix())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, store.Stats().Items)

	_, found, _ := store.Get(ctx, nextDay)
	assert.True(t, found)
}

// TestMemoryStoreMaxItems tests eviction once the size limit is reached
func TestMemoryStoreMaxItems(t *testing.T) {
	store := NewMemoryStore(time.Hour, 2)
	defer store.Clear()
	ctx := context.Background()

	first := raceKey(t, "2024-05-26", "tokyo", 1)
	second := raceKey(t, "2024-05-26", "tokyo", 2)
	third := raceKey(t, "2024-05-26", "tokyo", 3)

	require.NoError(t, store.Set(ctx, first, prediction(first, dynamics.PaceSlow)))
	require.NoError(t, store.Set(ctx, second, prediction(second, dynamics.PaceSlow)))
	require.NoError(t, store.Set(ctx, third, prediction(third, dynamics.PaceSlow)))

	assert.Equal(t, 2, store.Stats().Items)
	_, found, _ := store.Get(ctx, first)
	assert.False(t, found)
	_, found, _ = store.Get(ctx, third)
	assert.True(t, found)

	// Overwriting an existing key does not evict
	require.NoError(t, store.Set(ctx, third, prediction(third, dynamics.PaceHigh)))
	_, found, _ = store.Get(ctx, second)
	assert.True(t, found)
}

// TestMemoryStoreExpiry tests TTL expiry
func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(50*time.Millisecond, 10)
	defer store.Clear()
	ctx := context.Background()

	key := raceKey(t, "2024-05-26", "tokyo", 11)
	require.NoError(t, store.Set(ctx, key, prediction(key, dynamics.PaceSlow)))

	time.Sleep(100 * time.Millisecond)

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestNewStore tests backend selection
func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "memory", backend: BackendMemory},
		{name: "default", backend: ""},
		{name: "redis without address", backend: BackendRedis, wantErr: true},
		{name: "unknown", backend: "memcached", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.backend)
			store, err := New(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Ping(context.Background()))
			assert.NoError(t, store.Close())
		})
	}
}
