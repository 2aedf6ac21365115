// Package vvo provides a client for the VVO WebAPI, the public stop finder and
// trip planner of the Dresden transport association.
package vvo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/provider/resilience"
	"github.com/dvbroute/dvbroute/internal/transit"
)

const (
	// ProviderName identifies this transit provider.
	ProviderName = "vvo"

	// DefaultBaseURL is the VVO WebAPI base URL.
	DefaultBaseURL = "https://webapi.vvo-online.de"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	statusOK = "Ok"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the VVO client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the VVO WebAPI).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the per-attempt request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// MaxRetries bounds retries of the default resilient client (optional).
	MaxRetries uint64

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a VVO WebAPI client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new VVO client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.MaxRetries > 0 {
			clientCfg.MaxRetries = cfg.MaxRetries
		}
		clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChange(cfg.Logger)
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FindStop returns stop candidates for a free-text query, in upstream ranking order.
func (c *Client) FindStop(ctx context.Context, query string) ([]transit.StopLocation, error) {
	req := pointFinderRequest{
		Query:         query,
		Limit:         0,
		StopsOnly:     true,
		RegionalOnly:  false,
		StopShortcuts: false,
		DVB:           true,
	}

	c.logger.Debug().
		Str("query", query).
		Msg("requesting stops from VVO")

	var resp pointFinderResponse
	if err := c.post(ctx, "/tr/pointfinder", req, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status); err != nil {
		return nil, err
	}

	stops := make([]transit.StopLocation, 0, len(resp.Points))
	for _, raw := range resp.Points {
		stop, ok := parsePoint(raw)
		if !ok {
			c.logger.Warn().
				Str("point", raw).
				Msg("skipping malformed point")
			continue
		}
		stops = append(stops, stop)
	}

	c.logger.Debug().
		Str("query", query).
		Int("candidates", len(stops)).
		Msg("received stops from VVO")

	return stops, nil
}

// Route computes trip options between two stop IDs.
func (c *Client) Route(ctx context.Context, originID, destinationID string, when time.Time, isArrivalTime bool) (*transit.Route, error) {
	req := tripsRequest{
		Origin:           originID,
		Destination:      destinationID,
		Time:             when.UTC().Format(time.RFC3339),
		IsArrivalTime:    isArrivalTime,
		ShortTermChanges: true,
		MobilitySettings: mobilitySettings{
			MobilityRestriction: "None",
		},
		StandardSettings: standardSettings{
			MaxChanges:              "Unlimited",
			WalkingSpeed:            "Normal",
			FootpathToStop:          5,
			IncludeAlternativeStops: true,
		},
	}

	c.logger.Debug().
		Str("origin_id", originID).
		Str("destination_id", destinationID).
		Time("time", when).
		Bool("is_arrival_time", isArrivalTime).
		Msg("requesting trips from VVO")

	var resp tripsResponse
	if err := c.post(ctx, "/tr/trips", req, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status); err != nil {
		return nil, err
	}

	route, err := toRoute(originID, destinationID, &resp)
	if err != nil {
		return nil, &transit.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "transit provider returned an unreadable trip",
			Err:      err,
		}
	}

	c.logger.Debug().
		Int("trip_count", len(route.Trips)).
		Msg("received trips from VVO")

	return route, nil
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("executing request: %w", err)
		}
		return &transit.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach transit provider",
			Err:      errors.Join(transit.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// handleErrorResponse maps HTTP error statuses to domain errors.
func (c *Client) handleErrorResponse(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &transit.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "transit provider rate limit exceeded",
			Err:      transit.ErrProviderUnavailable,
		}
	case statusCode >= 500:
		return &transit.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "transit provider is temporarily unavailable",
			Err:      transit.ErrProviderUnavailable,
		}
	default:
		return &transit.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("unexpected status code: %d", statusCode),
			Err:      transit.ErrProviderUnavailable,
		}
	}
}

// checkStatus converts a non-Ok status envelope into an error.
func checkStatus(s responseStatus) error {
	if s.Code == statusOK {
		return nil
	}
	msg := s.Message
	if msg == "" {
		msg = "transit provider rejected the request"
	}
	return &transit.Error{
		Provider: ProviderName,
		Code:     s.Code,
		Message:  msg,
		Err:      transit.ErrProviderUnavailable,
	}
}
