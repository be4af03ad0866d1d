package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrInvalidUpstreamPayload marks a 2xx response whose body could not be decoded.
var ErrInvalidUpstreamPayload = errors.New("invalid upstream payload")

// ErrMissingAPIKey is returned before any request when a required key is unset.
var ErrMissingAPIKey = errors.New("api key is required")

// UpstreamError represents a non-2xx answer from one of the data sources.
type UpstreamError struct {
	Source     string
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// maxBody caps how much of an upstream body is read into memory.
const maxBody = 32 << 20

// httpClient holds what every upstream client shares.
type httpClient struct {
	source  string
	baseURL string
	client  *http.Client
}

func newHTTPClient(source, baseURL string, timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return httpClient{
		source:  source,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// get performs a GET against baseURL with the given query and headers and
// returns the body of a 2xx response. Other statuses become *UpstreamError.
func (c httpClient) get(ctx context.Context, q url.Values, headers map[string]string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()

	logger := log.With().Str("source", c.source).Str("path", u.Path).Logger()
	logger.Debug().Str("start", q.Get("start")).Str("end", q.Get("end")).Msg("request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(started)
	if err != nil {
		logger.Error().Err(err).Dur("duration", duration).Msg("request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug().Int("status", resp.StatusCode).Dur("duration", duration).Msg("response")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	upErr := &UpstreamError{Source: c.source, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		upErr.Code = "UNAUTHORIZED"
		upErr.Message = "unauthorized: invalid API key"
	case http.StatusForbidden:
		upErr.Code = "INVALID_API_KEY"
		upErr.Message = "invalid API key or insufficient permissions"
	case http.StatusTooManyRequests:
		upErr.RetryAfter = resp.Header.Get("Retry-After")
		upErr.Code = "RATE_LIMIT_EXCEEDED"
		upErr.Message = fmt.Sprintf("rate limit exceeded, retry after: %s", upErr.RetryAfter)
	default:
		upErr.Code = "API_ERROR"
		upErr.Message = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, snippet(body))
	}
	logger.Warn().Int("status", resp.StatusCode).Str("code", upErr.Code).Msg(upErr.Message)
	return nil, upErr
}

func snippet(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// Window is a fetch interval sent upstream.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if !w.Start.Before(w.End) {
		return fmt.Errorf("start must be before end")
	}
	return nil
}
