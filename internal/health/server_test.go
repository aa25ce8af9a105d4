package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// TestHealthAndLive tests the liveness endpoints
func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "race-dynamics", Version: "1.2.0"})

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, s.Handler(), path)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "race-dynamics", resp.Service)
	}
}

// TestReady tests readiness across named checks
func TestReady(t *testing.T) {
	cacheErr := errors.New("connection refused")

	tests := []struct {
		name       string
		ready      bool
		cacheErr   error
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok", "cache": "ok"},
		},
		{
			name:       "not marked ready",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready", "database": "ok", "cache": "ok"},
		},
		{
			name:       "cache down",
			ready:      true,
			cacheErr:   cacheErr,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "ok", "cache": "error: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{
				ServiceName: "race-dynamics",
				Checks: map[string]Pinger{
					"database": PingFunc(func(ctx context.Context) error { return nil }),
					"cache":    PingFunc(func(ctx context.Context) error { return tt.cacheErr }),
				},
			})
			s.SetReady(tt.ready)

			rec := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

// TestMetricsEndpoint tests that the metrics handler is mounted
func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(Config{
		MetricsPath: "/prom",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("race_dynamics_predictions_total 1\n"))
		}),
	})

	rec := get(t, s.Handler(), "/prom")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "race_dynamics_predictions_total")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)
}
