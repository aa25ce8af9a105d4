// Package service wires repositories, the course provider and the cache
// around the race dynamics engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/cache"
	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/logger"
	"github.com/yourusername/race-dynamics/internal/metrics"
	"github.com/yourusername/race-dynamics/internal/models"
	"github.com/yourusername/race-dynamics/internal/repository"
)

// defaultHistoryLimit bounds how many past runs are loaded per runner
const defaultHistoryLimit = 50

// CourseSource fetches course characteristics from a remote provider
type CourseSource interface {
	GetCourse(ctx context.Context, key models.CourseKey) (*models.CourseProfile, error)
}

// PredictOptions tune a single prediction request
type PredictOptions struct {
	ForceRecalculate bool
	RequestedBy      string
}

// WarmReport summarises one warm run
type WarmReport struct {
	Races    int
	Warmed   int
	Failed   int
	Duration time.Duration
	Errors   map[string]error
}

// PredictionService produces race predictions from stored data
type PredictionService struct {
	repos        *repository.Repositories
	courseAPI    CourseSource
	store        cache.Store
	engineCfg    dynamics.Config
	jitterSeed   int64
	concurrency  int
	historyLimit int
	validator    *DataValidator
	aggregator   *dynamics.Aggregator
	logger       *logrus.Logger
	predLog      *logger.PredictionLogger
	audit        *logger.AuditLogger
}

// NewPredictionService creates a new prediction service. courseAPI may be nil.
func NewPredictionService(
	repos *repository.Repositories,
	courseAPI CourseSource,
	store cache.Store,
	engineCfg dynamics.Config,
	jitterSeed int64,
	concurrency int,
	log *logrus.Logger,
) (*PredictionService, error) {
	if repos == nil || repos.Race == nil || repos.Entry == nil || repos.Performance == nil {
		return nil, fmt.Errorf("race, entry and performance repositories are required")
	}
	if store == nil {
		return nil, fmt.Errorf("prediction cache is required")
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	return &PredictionService{
		repos:        repos,
		courseAPI:    courseAPI,
		store:        store,
		engineCfg:    engineCfg,
		jitterSeed:   jitterSeed,
		concurrency:  concurrency,
		historyLimit: defaultHistoryLimit,
		validator:    NewDataValidator(log),
		aggregator:   dynamics.NewAggregator(engineCfg),
		logger:       log,
		predLog:      logger.NewPredictionLogger(log),
		audit:        logger.NewAuditLogger(log),
	}, nil
}

// Predict returns the prediction for a race, from cache unless a
// recalculation is forced.
func (s *PredictionService) Predict(ctx context.Context, key models.RaceKey, opts PredictOptions) (*dynamics.PacePrediction, error) {
	start := time.Now()
	keyStr := key.String()

	if opts.ForceRecalculate {
		s.audit.LogForcedRecalculation(keyStr, opts.RequestedBy)
	} else {
		cached, found, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.WithError(err).WithField("race_key", keyStr).Warn("Prediction cache read failed, recalculating")
		} else if found {
			s.predLog.LogCacheEvent("hit", keyStr)
			s.predLog.LogPrediction(keyStr, string(cached.ExpectedPace), len(cached.Predictions), true, time.Since(start))
			metrics.RecordPrediction(string(cached.ExpectedPace), "cache", len(cached.Predictions), time.Since(start).Seconds())
			return cached, nil
		} else {
			s.predLog.LogCacheEvent("miss", keyStr)
		}
	}

	prediction, err := s.compute(ctx, key)
	if err != nil {
		s.predLog.LogPredictionError(keyStr, err)
		metrics.RecordPredictionError(errorReason(err))
		return nil, err
	}

	if err := s.store.Set(ctx, key, prediction); err != nil {
		s.logger.WithError(err).WithField("race_key", keyStr).Warn("Failed to cache prediction")
	}

	elapsed := time.Since(start)
	s.predLog.LogPrediction(keyStr, string(prediction.ExpectedPace), len(prediction.Predictions), false, elapsed)
	metrics.RecordPrediction(string(prediction.ExpectedPace), "engine", len(prediction.Predictions), elapsed.Seconds())

	return prediction, nil
}

// compute loads everything the engine needs and runs it
func (s *PredictionService) compute(ctx context.Context, key models.RaceKey) (*dynamics.PacePrediction, error) {
	race, err := s.repos.Race.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load race %s: %w", key, err)
	}
	if issues := s.validator.ValidateRace(race); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s", dynamics.ErrInvalidInput, strings.Join(issues, "; "))
	}

	entries, err := s.repos.Entry.GetByRaceID(ctx, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", key, err)
	}
	active := activeEntries(entries)
	if len(active) == 0 {
		return nil, models.ErrNoEntries
	}
	if issues := s.validator.ValidateEntries(active); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s", dynamics.ErrInvalidInput, strings.Join(issues, "; "))
	}

	runners := make([]dynamics.RunnerProfile, 0, len(active))
	var noHistory []int
	for _, e := range active {
		records, err := s.repos.Performance.GetByRunner(ctx, models.PerformanceQuery{
			RunnerID: e.RunnerID,
			Before:   race.RaceDate,
			Limit:    s.historyLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load history of runner %d: %w", e.RunnerNumber, err)
		}

		profile, err := buildRunnerProfile(s.aggregator, e, s.validator.FilterPerformances(e.RunnerNumber, records), race.Distance)
		if err != nil {
			return nil, err
		}
		if profile.History.SampleCount == 0 {
			noHistory = append(noHistory, profile.Number)
		}
		runners = append(runners, profile)
	}
	s.predLog.LogInsufficientData(key.String(), noHistory)

	input := dynamics.RaceInput{
		RaceKey:  key.String(),
		Distance: race.Distance,
		Runners:  runners,
		Course:   s.resolveCourse(ctx, race.CourseKey()),
	}

	engine, err := dynamics.NewEngine(s.engineCfg, dynamics.NewSeededJitter(jitterSeed(s.jitterSeed, key)), s.logger)
	if err != nil {
		return nil, err
	}
	return engine.Predict(input)
}

// resolveCourse looks the course up in the repository, then the remote
// provider. A course that cannot be found is returned as nil, which the
// engine treats as neutral.
func (s *PredictionService) resolveCourse(ctx context.Context, key models.CourseKey) *models.CourseProfile {
	if s.repos.Course != nil {
		course, err := s.repos.Course.Get(ctx, key)
		if err == nil {
			metrics.RecordCourseLookup("repository")
			return course
		}
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.WithError(err).WithField("course", key.String()).Warn("Course repository lookup failed")
		}
	}

	if s.courseAPI == nil {
		metrics.RecordCourseLookup("none")
		s.predLog.LogCourseFallback(key.String(), models.ErrNotFound)
		return nil
	}

	course, err := s.courseAPI.GetCourse(ctx, key)
	if err != nil {
		metrics.RecordCourseLookup("none")
		s.predLog.LogCourseFallback(key.String(), err)
		return nil
	}
	metrics.RecordCourseLookup("api")

	if s.repos.Course != nil {
		if err := s.repos.Course.Upsert(ctx, course); err != nil {
			s.logger.WithError(err).WithField("course", key.String()).Warn("Failed to store course profile")
		}
	}
	return course
}

// jitterSeed returns the configured seed, or one derived from the race key
// so that repeated calculations of a race lay out identically.
func jitterSeed(configured int64, key models.RaceKey) int64 {
	if configured != 0 {
		return configured
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key.String()))
	seed := int64(h.Sum64() >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// Invalidate drops the cached prediction of one race
func (s *PredictionService) Invalidate(ctx context.Context, key models.RaceKey, requestedBy string) (int, error) {
	removed, err := s.store.Invalidate(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	metrics.RecordInvalidation("race", removed)
	s.audit.LogInvalidation("race", key.String(), removed, requestedBy)
	return removed, nil
}

// InvalidateDate drops the cached predictions of every race on a date
func (s *PredictionService) InvalidateDate(ctx context.Context, date time.Time, requestedBy string) (int, error) {
	prefix := models.RaceKey{Date: date}.DatePrefix()
	removed, err := s.store.InvalidateDate(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate %s: %w", prefix, err)
	}
	metrics.RecordInvalidation("date", removed)
	s.audit.LogInvalidation("date", prefix, removed, requestedBy)
	return removed, nil
}

// WarmUpcoming precomputes predictions of scheduled races starting in
// [from, to). Each race runs in its own goroutine, bounded by the
// configured concurrency. Individual failures are reported, not returned.
func (s *PredictionService) WarmUpcoming(ctx context.Context, from, to time.Time) (*WarmReport, error) {
	start := time.Now()

	races, err := s.repos.Race.GetUpcoming(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming races: %w", err)
	}

	report := &WarmReport{Races: len(races), Errors: make(map[string]error)}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.concurrency)
	)

	for _, race := range races {
		if !race.IsUpcoming() {
			continue
		}
		key := race.Key()

		select {
		case <-ctx.Done():
			wg.Wait()
			return report, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(key models.RaceKey) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.Predict(ctx, key, PredictOptions{RequestedBy: "scheduler"})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errors[key.String()] = err
				return
			}
			report.Warmed++
		}(key)
	}
	wg.Wait()

	report.Duration = time.Since(start)
	s.predLog.LogWarmRun(report.Races, report.Warmed, report.Failed, report.Duration)
	metrics.RecordWarmRun(report.Failed, float64(time.Now().Unix()))

	return report, nil
}

// CacheStats exposes the cache counters
func (s *PredictionService) CacheStats() cache.Stats {
	return s.store.Stats()
}

func activeEntries(entries []*models.Entry) []*models.Entry {
	active := make([]*models.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && !e.Scratched {
			active = append(active, e)
		}
	}
	return active
}

// buildRunnerProfile aggregates a runner's history into an engine profile
func buildRunnerProfile(agg *dynamics.Aggregator, e *models.Entry, records []*models.PastPerformance, distance int) (dynamics.RunnerProfile, error) {
	style, err := dynamics.ParseRunningStyle(e.RunningStyle)
	if err != nil {
		return dynamics.RunnerProfile{}, fmt.Errorf("runner %d: %w", e.RunnerNumber, err)
	}
	return dynamics.RunnerProfile{
		Number:     e.RunnerNumber,
		Name:       e.Name,
		PostNumber: e.PostNumber,
		Weight:     e.Weight,
		Style:      style,
		History:    agg.Aggregate(records, distance),
	}, nil
}

// errorReason maps an error onto a low-cardinality metrics label
func errorReason(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrNoEntries):
		return "no_entries"
	case errors.Is(err, dynamics.ErrInvalidInput), models.IsValidationError(err):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
