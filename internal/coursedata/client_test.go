package coursedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/config"
	"github.com/yourusername/race-dynamics/internal/models"
)

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      5 * time.Millisecond,
		RateLimit:         0,
		CircuitBreakerMax: 2,
	}
}

func tokyoKey() models.CourseKey {
	return models.CourseKey{Venue: "tokyo", Surface: "Turf", Distance: 2400}
}

// TestGetCourse tests a successful course lookup
func TestGetCourse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/TOKYO/turf/2400", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"straightLength": 525.9, "gradientPosition": "Finish", "insideAdvantage": 0.4, "standardFrontTime": 35.5}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL+"/", "secret", nil)

	profile, err := client.GetCourse(context.Background(), tokyoKey())
	require.NoError(t, err)
	assert.Equal(t, "TOKYO", profile.Venue)
	assert.Equal(t, "turf", profile.Surface)
	assert.Equal(t, 2400, profile.Distance)
	require.NotNil(t, profile.StraightLength)
	assert.Equal(t, 525.9, *profile.StraightLength)
	require.NotNil(t, profile.GradientPosition)
	assert.Equal(t, models.GradientFinish, *profile.GradientPosition)
	assert.Nil(t, profile.OutsideAdvantage)

	has, known := profile.HasFinishGradient()
	assert.True(t, has)
	assert.True(t, known)
}

// TestGetCourseDropsInvalidValues tests that out-of-domain values read as unknown
func TestGetCourseDropsInvalidValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"straightLength": 0, "gradientPosition": "uphill", "standardFrontTime": -1}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL, "", nil)

	profile, err := client.GetCourse(context.Background(), tokyoKey())
	require.NoError(t, err)
	assert.Nil(t, profile.StraightLength)
	assert.Nil(t, profile.GradientPosition)
	assert.Nil(t, profile.StandardFrontTime)
}

// TestGetCourseErrors tests status code mapping
func TestGetCourseErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{name: "not found", status: http.StatusNotFound, wantCode: ErrCodeNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: ErrCodeAuthenticationFailed},
		{name: "bad request", status: http.StatusBadRequest, wantCode: ErrCodeServerError},
		{name: "invalid json", status: http.StatusOK, body: "{", wantCode: ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClientWithHTTP(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL, "", nil)
			_, err := client.GetCourse(context.Background(), tokyoKey())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

// TestGetCourseNotFoundMatchesModels tests errors.Is against models.ErrNotFound
func TestGetCourseNotFoundMatchesModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithHTTP(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL, "", nil)
	_, err := client.GetCourse(context.Background(), tokyoKey())
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

// TestRetryThenSuccess tests that transient server errors are retried
func TestRetryThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"straightLength": 400}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL, "", nil)
	profile, err := client.GetCourse(context.Background(), tokyoKey())
	require.NoError(t, err)
	assert.Equal(t, 400.0, *profile.StraightLength)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestCircuitBreakerOpens tests that repeated failures open the breaker
func TestCircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	httpClient := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	client := NewClientWithHTTP(httpClient, server.URL, "", nil)

	for i := 0; i < 2; i++ {
		_, err := client.GetCourse(context.Background(), tokyoKey())
		require.Error(t, err)
	}
	assert.True(t, httpClient.IsOpen())

	before := atomic.LoadInt32(&calls)
	_, err := client.GetCourse(context.Background(), tokyoKey())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrCodeCircuitOpen, apiErr.Code)
	assert.Equal(t, before, atomic.LoadInt32(&calls))

	httpClient.Reset()
	assert.False(t, httpClient.IsOpen())
}

// TestNewClientDisabled tests configuration handling
func TestNewClientDisabled(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewClient(cfg, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	cfg.CourseAPI.Enabled = true
	_, err = NewClient(cfg, nil)
	assert.Error(t, err)

	cfg.CourseAPI.BaseURL = "http://localhost:8081"
	client, err := NewClient(cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

// TestRateLimiter tests that the limiter spaces requests
func TestRateLimiter(t *testing.T) {
	cfg := testHTTPConfig()
	cfg.RateLimit = 20
	httpClient := NewRateLimitedHTTPClient(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, httpClient.limiter.Wait(ctx))
	}
	// Burst of one, then four waits of 50ms
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}
