package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"forecast-dashboard/internal/model"
)

// DefaultRangeForecastURL serves range-binned forecasts.
const DefaultRangeForecastURL = "https://api.forecast.local/range_prob_forecasts"

// RangeForecastClient fetches probability-per-price-bin forecasts.
type RangeForecastClient struct {
	http   httpClient
	apiKey string
}

// NewRangeForecastClient creates a range forecast client.
// If baseURL is empty, DefaultRangeForecastURL is used.
func NewRangeForecastClient(baseURL, apiKey string, timeout time.Duration) *RangeForecastClient {
	if baseURL == "" {
		baseURL = DefaultRangeForecastURL
	}
	return &RangeForecastClient{
		http:   newHTTPClient(string(model.SourceRangeForecast), baseURL, timeout),
		apiKey: apiKey,
	}
}

// Fetch returns the raw range records for w. The API key goes in x-api-key.
func (c *RangeForecastClient) Fetch(ctx context.Context, w Window) ([]model.RawRangePoint, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", model.SourceRangeForecast, ErrMissingAPIKey)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("start", w.Start.UTC().Format(time.RFC3339))
	q.Set("end", w.End.UTC().Format(time.RFC3339))

	body, err := c.http.get(ctx, q, map[string]string{
		"x-api-key": c.apiKey,
		"Accept":    "application/json",
	})
	if err != nil {
		return nil, err
	}
	return DecodeRanges(body)
}

// DecodeRanges parses a range forecast payload.
func DecodeRanges(body []byte) ([]model.RawRangePoint, error) {
	var out []model.RawRangePoint
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: range forecast: %v", ErrInvalidUpstreamPayload, err)
	}
	return out, nil
}
