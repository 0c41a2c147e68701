// Package atz talks to the ATZ CRM candidate API. The API's exact schema is
// not guaranteed (list envelope, custom-field storage and update endpoint
// conventions all vary between deployments), so every reader tolerates the
// shapes observed in the wild and every writer walks an ordered fallback
// list until one attempt succeeds.
package atz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

const (
	defaultBaseURL   = "https://api.atzcrm.com/v1"
	defaultUserAgent = "zadarma-atz-relay/0.1"
)

// Config controls how the ATZ client behaves.
type Config struct {
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string

	// ActivityPath is an operator-preferred path template for the activity
	// strategy, e.g. "/candidate/%s/activity". Tried before the
	// conventional paths.
	ActivityPath string
}

// Client wraps the ATZ REST endpoints used by the relay.
type Client struct {
	baseURL      string
	apiToken     string
	httpClient   *http.Client
	logger       *logging.Logger
	userAgent    string
	activityPath string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("atz: API token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:      baseURL,
		apiToken:     cfg.APIToken,
		httpClient:   httpClient,
		logger:       logger,
		userAgent:    userAgent,
		activityPath: strings.TrimSpace(cfg.ActivityPath),
	}, nil
}

// APIError is a non-2xx response from ATZ.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("atz: status %d: %s", e.Status, truncate(e.Body, 200))
}

// IsNotFound reports whether err is an ATZ 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// isInvalidOwner matches the one rejection that gets a scoped retry: the
// remote refusing the supplied owner id.
func isInvalidOwner(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Body, "Invalid user for owner")
}

// do issues one request and returns the raw response body. Non-2xx statuses
// come back as *APIError so callers can branch on status and body text.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("atz: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("atz: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("atz: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("atz: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
