// Package coursedata fetches course characteristics from a remote provider.
package coursedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/config"
	"github.com/yourusername/race-dynamics/internal/metrics"
	"github.com/yourusername/race-dynamics/internal/models"
)

// courseResponse is the provider's course payload. Absent fields stay nil.
type courseResponse struct {
	Venue             string   `json:"venue"`
	Surface           string   `json:"surface"`
	Distance          int      `json:"distance"`
	StraightLength    *float64 `json:"straightLength"`
	GradientPosition  *string  `json:"gradientPosition"`
	InsideAdvantage   *float64 `json:"insideAdvantage"`
	OutsideAdvantage  *float64 `json:"outsideAdvantage"`
	StandardFrontTime *float64 `json:"standardFrontTime"`
}

// Client fetches course profiles from the course characteristics API
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewClient creates a course API client from configuration.
// Returns ErrDisabled when the API is not enabled.
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if !cfg.CourseAPI.Enabled {
		return nil, ErrDisabled
	}
	if cfg.CourseAPI.BaseURL == "" {
		return nil, fmt.Errorf("course API base URL is required")
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.CourseAPITimeout()
	if cfg.CourseAPI.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.CourseAPI.MaxRetries
	}
	if cfg.CourseAPI.RateLimit > 0 {
		httpCfg.RateLimit = cfg.CourseAPI.RateLimit
	}

	return NewClientWithHTTP(NewRateLimitedHTTPClient(httpCfg, logger), cfg.CourseAPI.BaseURL, cfg.CourseAPI.APIKey, logger), nil
}

// NewClientWithHTTP creates a client over an existing HTTP client
func NewClientWithHTTP(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// GetCourse retrieves the characteristics of a course layout
func (c *Client) GetCourse(ctx context.Context, key models.CourseKey) (*models.CourseProfile, error) {
	endpoint := fmt.Sprintf("%s/courses/%s/%s/%d",
		c.baseURL,
		url.PathEscape(strings.ToUpper(key.Venue)),
		url.PathEscape(strings.ToLower(key.Surface)),
		key.Distance,
	)

	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.apiKey != "" {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, endpoint, header)
	metrics.RecordCourseAPICall(time.Since(start).Seconds())
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			return nil, apiErr
		}
		return nil, NewAPIError(ErrCodeNetworkError, "failed to fetch course", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, NewAPIError(ErrCodeNotFound, fmt.Sprintf("course %s not found", key), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewAPIError(ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewAPIError(ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewAPIError(ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload courseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewAPIError(ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertCourse(key, &payload), nil
}

// convertCourse maps the provider payload onto a course profile. Values
// outside their domain are dropped so they read as unknown.
func (c *Client) convertCourse(key models.CourseKey, payload *courseResponse) *models.CourseProfile {
	profile := &models.CourseProfile{
		Venue:             strings.ToUpper(key.Venue),
		Surface:           strings.ToLower(key.Surface),
		Distance:          key.Distance,
		StraightLength:    payload.StraightLength,
		InsideAdvantage:   payload.InsideAdvantage,
		OutsideAdvantage:  payload.OutsideAdvantage,
		StandardFrontTime: payload.StandardFrontTime,
	}

	if payload.GradientPosition != nil {
		g := strings.ToLower(strings.TrimSpace(*payload.GradientPosition))
		switch g {
		case models.GradientNone, models.GradientMiddle, models.GradientFinish:
			profile.GradientPosition = &g
		default:
			c.logger.WithFields(logrus.Fields{
				"course":   key.String(),
				"gradient": *payload.GradientPosition,
			}).Debug("Ignoring unknown gradient position")
		}
	}

	if profile.StraightLength != nil && *profile.StraightLength <= 0 {
		profile.StraightLength = nil
	}
	if profile.StandardFrontTime != nil && *profile.StandardFrontTime <= 0 {
		profile.StandardFrontTime = nil
	}

	return profile
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.httpClient.Close()
}
