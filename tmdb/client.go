package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client represents a TMDB API client
type Client struct {
	baseURL      string
	siteURL      string
	imageBaseURL string
	apiKey       string
	userAgent    string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewClient creates a new TMDB client. It performs no I/O.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if _, err := url.Parse(o.baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %w", ErrInvalidConfig, err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:      strings.TrimRight(o.baseURL, "/"),
		siteURL:      strings.TrimRight(o.siteURL, "/"),
		imageBaseURL: strings.TrimRight(o.imageBaseURL, "/"),
		apiKey:       apiKey,
		userAgent:    o.userAgent,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// Do performs one API request and decodes the response into out.
//
// The API key is always appended to query. body is JSON-encoded for
// non-GET requests and must be nil for GET. out may be nil when the caller
// does not need the payload.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if method == http.MethodGet && body != nil {
		return fmt.Errorf("%w: GET %s must not carry a body", ErrInvalidConfig, path)
	}

	params := url.Values{}
	for k, v := range query {
		params[k] = append([]string(nil), v...)
	}
	params.Set("api_key", c.apiKey)
	requestURL := c.baseURL + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger()
	logger.Debug().Msg("Making TMDB API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("TMDB request failed")
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: reading body: %w", ErrNetwork, method, path, err)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("TMDB API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	return decodeStrict(path, data, out)
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(path string, statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Path: path}

	var status struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &status); err == nil {
		apiErr.Code = status.StatusCode
		apiErr.StatusMessage = status.StatusMessage
	} else if len(body) > 0 && len(body) < 512 {
		apiErr.StatusMessage = strings.TrimSpace(string(body))
	}
	return apiErr
}

// ApprovalURL returns the page where the user approves a request token.
func (c *Client) ApprovalURL(requestToken string) string {
	return c.siteURL + "/authenticate/" + url.PathEscape(requestToken)
}

// ImageURL returns the CDN URL of an image path at the given size
// (for example "w500" or "original"). It returns "" for an empty path.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return c.imageBaseURL + "/" + size + path
}
