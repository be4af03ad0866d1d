package models

import (
	"forecast-dashboard/internal/analysis"
	"forecast-dashboard/internal/dashboard"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"
)

// ForecastResponse is the quantile chart payload.
type ForecastResponse struct {
	Forecast series.QuantileTable `json:"forecast"`
	Status   dashboard.Status     `json:"status"`
}

// RangeForecastResponse is the bin chart payload. Exactly one of Table or
// Rows is set, depending on the requested format.
type RangeForecastResponse struct {
	Table  *series.BinTable `json:"table,omitempty"`
	Rows   []map[string]any `json:"rows,omitempty"`
	Status dashboard.Status `json:"status"`
}

// RangePointView adds the probability density to a range point.
type RangePointView struct {
	model.RangePoint
	Density float64 `json:"density"`
}

// RangePointsResponse lists individual range points.
type RangePointsResponse struct {
	Points []RangePointView `json:"points"`
	Status dashboard.Status `json:"status"`
}

// DayAheadResponse is the day-ahead price payload.
type DayAheadResponse struct {
	Prices  []model.PricePoint    `json:"prices"`
	Summary analysis.PriceSummary `json:"summary"`
	Status  dashboard.Status      `json:"status"`
}

// TimestampProbability is AboveBelow evaluated for one forecast timestamp.
type TimestampProbability struct {
	Timestamp string `json:"timestamp"`
	analysis.Probability
}

// ProbabilitiesResponse holds either hourly rows joined with day-ahead
// prices, or per-timestamp rows for a fixed threshold.
type ProbabilitiesResponse struct {
	Threshold    *float64                     `json:"threshold,omitempty"`
	Hourly       []analysis.HourlyProbability `json:"hourly,omitempty"`
	PerTimestamp []TimestampProbability       `json:"per_timestamp,omitempty"`
}

// DashboardResponse bundles every chart with per-source status.
type DashboardResponse struct {
	Forecast      series.QuantileTable              `json:"forecast"`
	RangeForecast series.BinTable                   `json:"range_forecast"`
	DayAhead      []model.PricePoint                `json:"day_ahead"`
	Summary       analysis.PriceSummary             `json:"day_ahead_summary"`
	Probabilities []analysis.HourlyProbability      `json:"probabilities"`
	Status        map[model.Source]dashboard.Status `json:"status"`
}

// DomainsResponse lists the configured lookups.
type DomainsResponse struct {
	Countries     []string          `json:"countries"`
	Datasets      []string          `json:"datasets"`
	Zones         map[string]string `json:"zones"`
	DocumentTypes map[string]string `json:"document_types"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
