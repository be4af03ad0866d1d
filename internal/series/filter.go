package series

import (
	"time"

	"forecast-dashboard/internal/model"
)

// Window is a half-open interval [Start, End). A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t < End.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// FilterFunc keeps the items whose instant lies in w, preserving order.
// The input slice is never modified.
func FilterFunc[T any](items []T, at func(T) (time.Time, bool), w Window) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		t, ok := at(it)
		if !ok || !w.Contains(t) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterPrices restricts day-ahead prices to w.
func FilterPrices(points []model.PricePoint, w Window) []model.PricePoint {
	return FilterFunc(points, func(p model.PricePoint) (time.Time, bool) {
		return p.Time, !p.Time.IsZero()
	}, w)
}

// FilterRangePoints restricts normalized range points to w.
func FilterRangePoints(n *Normalizer, points []model.RangePoint, w Window) []model.RangePoint {
	return FilterFunc(points, func(p model.RangePoint) (time.Time, bool) {
		return n.Instant(p.Timestamp)
	}, w)
}

// Filter returns a copy of t holding only the labels inside w.
// Columns keep their positional alignment.
func (t Table[K]) Filter(w Window) Table[K] {
	instants := t.instants
	if len(instants) != len(t.Labels) {
		instants = make([]time.Time, len(t.Labels))
		for i, l := range t.Labels {
			instants[i], _ = time.Parse(time.RFC3339, l)
		}
	}

	var keep []int
	for i, at := range instants {
		if !at.IsZero() && w.Contains(at) {
			keep = append(keep, i)
		}
	}

	out := Table[K]{
		Labels:   make([]string, len(keep)),
		Columns:  make([]Column[K], len(t.Columns)),
		instants: make([]time.Time, len(keep)),
	}
	for j, i := range keep {
		out.Labels[j] = t.Labels[i]
		out.instants[j] = instants[i]
	}
	for ci, c := range t.Columns {
		values := make([]*float64, len(keep))
		for j, i := range keep {
			if v := c.Values[i]; v != nil {
				v := *v
				values[j] = &v
			}
		}
		out.Columns[ci] = Column[K]{Key: c.Key, Values: values}
	}
	return out
}
