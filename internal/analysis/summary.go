package analysis

import (
	"math"
	"sort"
	"time"

	"forecast-dashboard/internal/model"
)

// PriceSummary is a window-level view of a day-ahead price series.
type PriceSummary struct {
	Count int       `json:"count"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`
}

// SummarizePrices computes order statistics over points.
// Points are expected in chronological order; Start/End come from the ends.
func SummarizePrices(points []model.PricePoint) PriceSummary {
	s := PriceSummary{}
	if len(points) == 0 {
		return s
	}
	s.Count = len(points)
	s.Start = points[0].Time
	s.End = points[len(points)-1].Time

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(points))
	for _, p := range points {
		v := p.Price
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(vals)
	s.Min = minv
	s.Max = maxv
	s.Mean = sum / float64(len(vals))
	s.P05 = percentileSorted(vals, 0.05)
	s.P95 = percentileSorted(vals, 0.95)
	s.SpreadP95P05 = s.P95 - s.P05
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
