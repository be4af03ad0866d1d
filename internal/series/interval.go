package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"forecast-dashboard/internal/model"
)

var (
	// ErrUnsupportedResolution is fatal for the series carrying it.
	ErrUnsupportedResolution = errors.New("unsupported resolution")
	// ErrMissingSeriesStart marks a period without a parseable start instant.
	ErrMissingSeriesStart = errors.New("missing series start")
	// ErrInvalidPosition marks a single point that cannot be placed in time.
	ErrInvalidPosition = errors.New("invalid position")
)

// ParseResolution maps an ISO-8601 duration code to its step.
func ParseResolution(res string) (time.Duration, error) {
	switch strings.TrimSpace(res) {
	case "PT15M":
		return 15 * time.Minute, nil
	case "PT30M":
		return 30 * time.Minute, nil
	case "PT60M", "PT1H":
		return time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedResolution, res)
	}
}

// ExpandPosition returns start + (position-1)*step. Positions are 1-based
// and must not overflow the offset.
func ExpandPosition(start time.Time, step time.Duration, position int) (time.Time, error) {
	if position < 1 || step <= 0 || int64(position-1) > math.MaxInt64/int64(step) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	return start.Add(time.Duration(position-1) * step), nil
}

// parsePosition accepts base-10 integers only ("3", not "3.0" or "x").
func parsePosition(raw string) (int, bool) {
	pos, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || pos < 1 {
		return 0, false
	}
	return pos, true
}

// ExpandSeries turns one day-ahead period into price points.
//
// The whole series fails on an unsupported resolution or a missing start,
// since both are series-level metadata. Points with a non-numeric or
// non-positive position, or a non-numeric price, are skipped, as are points
// falling at or after the period end when the end parses.
// The result is sorted by instant; a repeated position keeps its last price.
func ExpandSeries(n *Normalizer, s model.DayAheadSeries) ([]model.PricePoint, error) {
	start, ok := n.Instant(s.Start)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingSeriesStart, s.Start)
	}
	step, err := ParseResolution(s.Resolution)
	if err != nil {
		return nil, err
	}
	end, hasEnd := n.Instant(s.End)

	byPos := make(map[int]model.PricePoint, len(s.Points))
	for _, p := range s.Points {
		pos, ok := parsePosition(p.Position)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(p.Price), 64)
		if err != nil {
			continue
		}
		at, err := ExpandPosition(start, step, pos)
		if err != nil || (hasEnd && !at.Before(end)) {
			continue
		}
		byPos[pos] = model.PricePoint{Time: at, Timestamp: n.Format(at), Price: price}
	}

	out := make([]model.PricePoint, 0, len(byPos))
	for _, pt := range byPos {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// ExpandDocument expands every series in doc. A failing series is dropped
// and its error returned; sibling series are unaffected. Points are returned
// in chronological order across series.
func ExpandDocument(n *Normalizer, doc model.DayAheadDocument) ([]model.PricePoint, []error) {
	var (
		out  []model.PricePoint
		errs []error
	)
	for i, s := range doc.Series {
		pts, err := ExpandSeries(n, s)
		if err != nil {
			errs = append(errs, fmt.Errorf("series %d: %w", i, err))
			continue
		}
		out = append(out, pts...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, errs
}
