package model

import "time"

// RawQuantilePoint matches one row of the quantile forecast API.
//
// Example:
//
//	{"start_date": "2025-06-29 12:45:00+00:00", "quantile_value": 0.5, "forecast_value": 87.3}
type RawQuantilePoint struct {
	StartDate string  `json:"start_date"`
	Quantile  float64 `json:"quantile_value"`
	Value     float64 `json:"forecast_value"`
}

// RawRangePoint matches one row of the range (bin) forecast API.
// For a fixed StartDate the probabilities across bins sum to at most 1.
type RawRangePoint struct {
	StartDate   string  `json:"start_date"`
	LowerBound  float64 `json:"lower_bound"`
	UpperBound  float64 `json:"upper_bound"`
	Probability float64 `json:"probability"`
}

// RangePoint is a RawRangePoint whose timestamp has been normalized.
type RangePoint struct {
	Timestamp   string  `json:"timestamp"`
	LowerBound  float64 `json:"lower_bound"`
	UpperBound  float64 `json:"upper_bound"`
	Probability float64 `json:"probability"`
}

// Density is the probability mass per EUR/MWh of the bin width.
// Zero-width bins have no density.
func (p RangePoint) Density() float64 {
	w := p.UpperBound - p.LowerBound
	if w <= 0 {
		return 0
	}
	return p.Probability / w
}

// DayAheadDocument is the uniform shape extracted from an ENTSO-E publication
// document. Every TimeSeries/Period pair becomes one entry in Series.
type DayAheadDocument struct {
	Series []DayAheadSeries
}

// DayAheadSeries holds the raw text of one period. Numbers stay strings so the
// core can drop individual malformed points instead of the whole document.
type DayAheadSeries struct {
	Start      string
	End        string
	Resolution string
	Points     []DayAheadPosition
}

type DayAheadPosition struct {
	Position string
	Price    string
}

// PricePoint is one day-ahead price at a canonical instant.
type PricePoint struct {
	Time      time.Time `json:"-"`
	Timestamp string    `json:"timestamp"`
	Price     float64   `json:"price_eur_per_mwh"`
}
