package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for race dynamics predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "race_dynamics"),
	}
}

// LogPrediction logs a completed prediction.
func (pl *PredictionLogger) LogPrediction(raceKey, pace string, runners int, cacheHit bool, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"race_key":    raceKey,
		"pace":        pace,
		"runners":     runners,
		"cache_hit":   cacheHit,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Info("Race prediction completed")
}

// LogPredictionError logs a failed prediction.
func (pl *PredictionLogger) LogPredictionError(raceKey string, err error) {
	pl.WithFields(logrus.Fields{
		"race_key": raceKey,
		"error":    err.Error(),
	}).Error("Race prediction failed")
}

// LogCacheEvent logs a cache interaction.
func (pl *PredictionLogger) LogCacheEvent(event, key string) {
	pl.WithFields(logrus.Fields{
		"event": event,
		"key":   key,
	}).Debug("Prediction cache event")
}

// LogInsufficientData logs runners predicted without qualifying history.
func (pl *PredictionLogger) LogInsufficientData(raceKey string, runnerNumbers []int) {
	if len(runnerNumbers) == 0 {
		return
	}
	pl.WithFields(logrus.Fields{
		"race_key": raceKey,
		"runners":  runnerNumbers,
	}).Warn("Runners without qualifying history use neutral figures")
}

// LogCourseFallback logs a course profile that could not be resolved.
func (pl *PredictionLogger) LogCourseFallback(courseKey string, err error) {
	fields := logrus.Fields{"course_key": courseKey}
	if err != nil {
		fields["error"] = err.Error()
	}
	pl.WithFields(fields).Warn("Course characteristics unavailable, course factors disabled")
}

// LogWarmRun logs a cache warming run.
func (pl *PredictionLogger) LogWarmRun(races, warmed, failed int, duration time.Duration) {
	entry := pl.WithFields(logrus.Fields{
		"races":       races,
		"warmed":      warmed,
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
	})
	if failed > 0 {
		entry.Warn("Prediction cache warm run finished with failures")
		return
	}
	entry.Info("Prediction cache warm run finished")
}
