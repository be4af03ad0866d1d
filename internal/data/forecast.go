package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"forecast-dashboard/internal/model"
)

// DefaultForecastURL serves quantile forecasts.
const DefaultForecastURL = "https://api.forecast.local/forecast"

// ForecastClient fetches quantile price forecasts.
type ForecastClient struct {
	http   httpClient
	apiKey string
}

// NewForecastClient creates a quantile forecast client.
// If baseURL is empty, DefaultForecastURL is used. The key is optional.
func NewForecastClient(baseURL, apiKey string, timeout time.Duration) *ForecastClient {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &ForecastClient{
		http:   newHTTPClient(string(model.SourceForecast), baseURL, timeout),
		apiKey: apiKey,
	}
}

// Fetch returns the raw quantile records for w. Timestamps are sent as RFC 3339.
func (c *ForecastClient) Fetch(ctx context.Context, w Window) ([]model.RawQuantilePoint, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("start", w.Start.UTC().Format(time.RFC3339))
	q.Set("end", w.End.UTC().Format(time.RFC3339))

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}

	body, err := c.http.get(ctx, q, headers)
	if err != nil {
		return nil, err
	}
	return DecodeQuantiles(body)
}

// DecodeQuantiles parses a forecast payload.
func DecodeQuantiles(body []byte) ([]model.RawQuantilePoint, error) {
	var out []model.RawQuantilePoint
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: forecast: %v", ErrInvalidUpstreamPayload, err)
	}
	return out, nil
}
