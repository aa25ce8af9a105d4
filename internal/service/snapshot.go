package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/models"
)

// Snapshot is a self-contained race card with each runner's history, used
// to predict a race without a database.
type Snapshot struct {
	Date       string                `json:"date"`
	Venue      string                `json:"venue"`
	RaceNumber int                   `json:"race_number"`
	Distance   int                   `json:"distance"`
	Surface    string                `json:"surface"`
	Course     *models.CourseProfile `json:"course,omitempty"`
	Entries    []SnapshotEntry       `json:"entries"`
}

// SnapshotEntry is one declared runner and its past runs
type SnapshotEntry struct {
	RunnerNumber int                       `json:"runner_number"`
	PostNumber   int                       `json:"post_number"`
	Name         string                    `json:"name"`
	Weight       *float64                  `json:"weight,omitempty"`
	RunningStyle string                    `json:"running_style"`
	Scratched    bool                      `json:"scratched,omitempty"`
	History      []*models.PastPerformance `json:"history"`
}

// LoadSnapshot decodes a snapshot document
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Key returns the race key of the snapshot
func (s *Snapshot) Key() (models.RaceKey, error) {
	return models.ParseRaceKey(s.Date, s.Venue, s.RaceNumber)
}

// SnapshotPredictor runs the engine over snapshots
type SnapshotPredictor struct {
	cfg        dynamics.Config
	seed       int64
	validator  *DataValidator
	aggregator *dynamics.Aggregator
	logger     *logrus.Logger
}

// NewSnapshotPredictor creates a snapshot predictor. A zero seed derives the
// jitter seed from the race key, as the prediction service does.
func NewSnapshotPredictor(cfg dynamics.Config, seed int64, logger *logrus.Logger) (*SnapshotPredictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SnapshotPredictor{
		cfg:        cfg,
		seed:       seed,
		validator:  NewDataValidator(logger),
		aggregator: dynamics.NewAggregator(cfg),
		logger:     logger,
	}, nil
}

// Predict validates the snapshot and predicts the race
func (p *SnapshotPredictor) Predict(snap *Snapshot) (*dynamics.PacePrediction, error) {
	key, err := snap.Key()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamics.ErrInvalidInput, err)
	}
	raceDate := key.Date

	entries := make([]*models.Entry, 0, len(snap.Entries))
	histories := make(map[int][]*models.PastPerformance, len(snap.Entries))
	for _, e := range snap.Entries {
		entries = append(entries, &models.Entry{
			RunnerNumber: e.RunnerNumber,
			PostNumber:   e.PostNumber,
			Name:         e.Name,
			Weight:       e.Weight,
			RunningStyle: e.RunningStyle,
			Scratched:    e.Scratched,
		})
		histories[e.RunnerNumber] = priorRuns(e.History, raceDate)
	}

	active := activeEntries(entries)
	if len(active) == 0 {
		return nil, models.ErrNoEntries
	}
	if issues := p.validator.ValidateEntries(active); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s", dynamics.ErrInvalidInput, strings.Join(issues, "; "))
	}

	runners := make([]dynamics.RunnerProfile, 0, len(active))
	for _, e := range active {
		records := p.validator.FilterPerformances(e.RunnerNumber, histories[e.RunnerNumber])
		profile, err := buildRunnerProfile(p.aggregator, e, records, snap.Distance)
		if err != nil {
			return nil, err
		}
		runners = append(runners, profile)
	}

	engine, err := dynamics.NewEngine(p.cfg, dynamics.NewSeededJitter(jitterSeed(p.seed, key)), p.logger)
	if err != nil {
		return nil, err
	}
	return engine.Predict(dynamics.RaceInput{
		RaceKey:  key.String(),
		Distance: snap.Distance,
		Runners:  runners,
		Course:   snap.Course,
	})
}

// priorRuns keeps records dated strictly before the race
func priorRuns(records []*models.PastPerformance, raceDate time.Time) []*models.PastPerformance {
	prior := make([]*models.PastPerformance, 0, len(records))
	for _, r := range records {
		if r != nil && r.RaceDate.Before(raceDate) {
			prior = append(prior, r)
		}
	}
	return prior
}
