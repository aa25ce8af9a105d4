package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger records operator actions that change served predictions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogInvalidation logs removal of cached predictions.
func (al *AuditLogger) LogInvalidation(scope, target string, removed int, requestedBy string) {
	al.WithFields(logrus.Fields{
		"scope":        scope,
		"target":       target,
		"removed":      removed,
		"requested_by": requestedBy,
	}).Info("Prediction cache invalidated")
}

// LogForcedRecalculation logs a prediction recomputed despite a cached copy.
func (al *AuditLogger) LogForcedRecalculation(raceKey, requestedBy string) {
	al.WithFields(logrus.Fields{
		"race_key":     raceKey,
		"requested_by": requestedBy,
	}).Info("Prediction recalculation forced")
}
