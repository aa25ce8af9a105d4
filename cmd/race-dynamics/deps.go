package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/race-dynamics/internal/cache"
	"github.com/yourusername/race-dynamics/internal/coursedata"
	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/repository"
	"github.com/yourusername/race-dynamics/internal/service"
)

// dependencies holds everything a database-backed command needs
type dependencies struct {
	db      *database.DB
	store   cache.Store
	course  *coursedata.Client
	service *service.PredictionService
}

func setupDependencies(ctx context.Context) (*dependencies, error) {
	engineCfg, err := dynamics.FromConfig(&cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	db, err := database.Initialize(ctx, cfg, appLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps := &dependencies{db: db}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	deps.store, err = cache.New(cfg)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	var courseSource service.CourseSource
	deps.course, err = coursedata.NewClient(cfg, appLog)
	switch {
	case err == nil:
		courseSource = deps.course
	case errors.Is(err, coursedata.ErrDisabled):
		appLog.Debug("Course API disabled, using stored course profiles only")
	default:
		deps.Close()
		return nil, fmt.Errorf("failed to initialize course API client: %w", err)
	}

	deps.service, err = service.NewPredictionService(
		repos,
		courseSource,
		deps.store,
		engineCfg,
		cfg.Engine.JitterSeed,
		cfg.Scheduler.Concurrency,
		appLog,
	)
	if err != nil {
		deps.Close()
		return nil, err
	}

	return deps, nil
}

// Close releases every opened resource
func (d *dependencies) Close() {
	if d.course != nil {
		_ = d.course.Close()
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close prediction cache")
		}
	}
	if d.db != nil {
		d.db.Close()
	}
}
