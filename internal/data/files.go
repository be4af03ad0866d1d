package data

import (
	"fmt"
	"os"

	"forecast-dashboard/internal/model"
)

// LoadQuantilesFile reads a saved forecast payload.
func LoadQuantilesFile(path string) ([]model.RawQuantilePoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast file: %w", err)
	}
	return DecodeQuantiles(raw)
}

// LoadRangesFile reads a saved range forecast payload.
func LoadRangesFile(path string) ([]model.RawRangePoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read range forecast file: %w", err)
	}
	return DecodeRanges(raw)
}

// LoadDayAheadFile reads a saved ENTSO-E XML document.
func LoadDayAheadFile(path string) (model.DayAheadDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.DayAheadDocument{}, fmt.Errorf("failed to read day-ahead file: %w", err)
	}
	return DecodeDayAhead(raw)
}

// GroupByTimestamp splits range points by timestamp, keeping input order.
func GroupByTimestamp(points []model.RangePoint) map[string][]model.RangePoint {
	out := map[string][]model.RangePoint{}
	for _, p := range points {
		out[p.Timestamp] = append(out[p.Timestamp], p)
	}
	return out
}
