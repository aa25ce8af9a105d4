package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/race-dynamics/internal/config"
)

// TestDSNEnv names the environment variable pointing at a test config file
const TestDSNEnv = "RACE_DYNAMICS_TEST_CONFIG"

// SetupTestDB connects to the test database, skipping the test when none is configured
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestDSNEnv)
	if path == "" {
		t.Skipf("integration test - set %s to a config file with a test database", TestDSNEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply test schema: %v", err)
	}

	return db
}

// TeardownTestDB removes test rows and closes the connection
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, table := range []string{"entries", "races", "past_performances", "course_profiles"} {
		if _, err := db.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("warning: failed to clean %s: %v", table, err)
		}
	}
	db.Close()
}
