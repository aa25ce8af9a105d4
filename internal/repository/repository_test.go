package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/models"
)

func ptr[T any](v T) *T { return &v }

// TestBuildPerformanceQuery tests optional filters and placeholder numbering
func TestBuildPerformanceQuery(t *testing.T) {
	runnerID := uuid.New()
	before := time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC)

	query, args := buildPerformanceQuery(models.PerformanceQuery{RunnerID: runnerID})
	assert.Contains(t, query, "WHERE runner_id = $1 ORDER BY race_date DESC")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []interface{}{runnerID}, args)

	query, args = buildPerformanceQuery(models.PerformanceQuery{
		RunnerID:    runnerID,
		Before:      before,
		MinDistance: 1600,
		MaxDistance: 2000,
		Limit:       20,
	})
	assert.Contains(t, query, "race_date < $2")
	assert.Contains(t, query, "distance >= $3")
	assert.Contains(t, query, "distance <= $4")
	assert.Contains(t, query, "LIMIT $5")
	assert.Equal(t, []interface{}{runnerID, before, 1600, 2000, 20}, args)

	query, args = buildPerformanceQuery(models.PerformanceQuery{RunnerID: runnerID, Limit: 5})
	assert.Contains(t, query, "LIMIT $2")
	assert.Len(t, args, 2)
}

// TestNewRepositoriesRequiresDB tests constructor validation
func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

// TestRaceRepositoryRoundTrip tests race and entry persistence
func TestRaceRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key, err := models.ParseRaceKey("2024-05-26", "tokyo", 11)
	require.NoError(t, err)

	race := &models.Race{
		ID:         uuid.New(),
		RaceDate:   key.Date,
		Venue:      key.Venue,
		RaceNumber: key.RaceNumber,
		RaceName:   "Tokyo Yushun",
		Distance:   2400,
		Surface:    "turf",
		Grade:      "G1",
		Status:     "scheduled",
	}
	require.NoError(t, repos.Race.Create(ctx, race))
	assert.ErrorIs(t, repos.Race.Create(ctx, race), models.ErrDuplicateKey)

	got, err := repos.Race.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, race.ID, got.ID)
	assert.Equal(t, "TOKYO", got.Venue)

	entry := &models.Entry{
		ID:           uuid.New(),
		RaceID:       race.ID,
		RunnerID:     uuid.New(),
		RunnerNumber: 1,
		PostNumber:   1,
		Name:         "Do Deuce",
		Weight:       ptr(57.0),
		RunningStyle: "stalker",
	}
	require.NoError(t, repos.Entry.Create(ctx, entry))

	entries, err := repos.Entry.GetByRaceID(ctx, race.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Do Deuce", entries[0].Name)

	_, err = repos.Race.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// TestPerformanceRepositoryHistory tests batch insert and runner lookup
func TestPerformanceRepositoryHistory(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runnerID := uuid.New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var records []*models.PastPerformance
	for i := 0; i < 5; i++ {
		records = append(records, &models.PastPerformance{
			RunnerID:         runnerID,
			RaceDate:         base.AddDate(0, 0, -30*i),
			Venue:            "nakayama",
			Distance:         1600 + 200*i,
			Surface:          "turf",
			FinishPosition:   ptr(i + 1),
			LateAbilityIndex: ptr(34.0 + float64(i)),
		})
	}
	require.NoError(t, repos.Performance.InsertBatch(ctx, records))

	got, err := repos.Performance.GetByRunner(ctx, models.PerformanceQuery{
		RunnerID:    runnerID,
		Before:      base,
		MaxDistance: 2200,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].RaceDate.After(got[1].RaceDate))
}

// TestCourseRepositoryUpsert tests course profile persistence
func TestCourseRepositoryUpsert(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	course := &models.CourseProfile{
		Venue:          "Tokyo",
		Surface:        "Turf",
		Distance:       2400,
		StraightLength: ptr(525.9),
	}
	require.NoError(t, repos.Course.Upsert(ctx, course))

	course.GradientPosition = ptr(models.GradientFinish)
	require.NoError(t, repos.Course.Upsert(ctx, course))

	got, err := repos.Course.Get(ctx, models.CourseKey{Venue: "tokyo", Surface: "turf", Distance: 2400})
	require.NoError(t, err)
	require.NotNil(t, got.GradientPosition)
	assert.Equal(t, models.GradientFinish, *got.GradientPosition)

	_, err = repos.Course.Get(ctx, models.CourseKey{Venue: "KYOTO", Surface: "dirt", Distance: 1800})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
