// Package dashboard keeps the latest normalized data for every source and
// refreshes it on a schedule.
package dashboard

import (
	"encoding/json"
	"sync"
	"time"

	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"

	"github.com/rs/zerolog/log"
)

// Status describes the health of one source.
type Status struct {
	Source      model.Source `json:"source"`
	RequestedAt time.Time    `json:"requested_at,omitempty"`
	LastSuccess time.Time    `json:"last_success,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	LastErrorAt time.Time    `json:"last_error_at,omitempty"`
	Records     int          `json:"records"`
	Dropped     int          `json:"dropped"`
}

// Stale reports whether the last attempt failed after data was once loaded.
func (s Status) Stale() bool {
	return !s.LastSuccess.IsZero() && s.LastError != ""
}

// MarshalJSON omits unset instants and adds the derived stale flag.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source      model.Source `json:"source"`
		RequestedAt *time.Time   `json:"requested_at,omitempty"`
		LastSuccess *time.Time   `json:"last_success,omitempty"`
		LastError   string       `json:"last_error,omitempty"`
		LastErrorAt *time.Time   `json:"last_error_at,omitempty"`
		Records     int          `json:"records"`
		Dropped     int          `json:"dropped"`
		Stale       bool         `json:"stale"`
	}{
		Source:      s.Source,
		RequestedAt: optionalTime(s.RequestedAt),
		LastSuccess: optionalTime(s.LastSuccess),
		LastError:   s.LastError,
		LastErrorAt: optionalTime(s.LastErrorAt),
		Records:     s.Records,
		Dropped:     s.Dropped,
		Stale:       s.Stale(),
	})
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Snapshot is a consistent read of the store. Its slices and tables are
// shared with the store and must be treated as read-only.
type Snapshot struct {
	Quantiles   series.QuantileTable
	RangePoints []model.RangePoint
	Bins        series.BinTable
	Prices      []model.PricePoint
	Status      map[model.Source]Status
}

// Store holds the most recent successful result per source. A failed fetch
// only updates that source's status; previously loaded data stays visible.
type Store struct {
	mu sync.RWMutex

	quantiles   series.QuantileTable
	rangePoints []model.RangePoint
	bins        series.BinTable
	prices      []model.PricePoint
	status      map[model.Source]Status
}

func NewStore() *Store {
	s := &Store{status: make(map[model.Source]Status, len(model.Sources()))}
	for _, src := range model.Sources() {
		s.status[src] = Status{Source: src}
	}
	return s
}

// SetQuantiles stores a quantile table fetched at requestedAt.
func (s *Store) SetQuantiles(requestedAt time.Time, t series.QuantileTable, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantiles = t
	s.succeed(model.SourceForecast, requestedAt, t.Len(), dropped)
}

// SetRanges stores normalized range points and their bin table.
func (s *Store) SetRanges(requestedAt time.Time, points []model.RangePoint, t series.BinTable, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangePoints = points
	s.bins = t
	s.succeed(model.SourceRangeForecast, requestedAt, len(points), dropped)
}

// SetPrices stores chronologically sorted day-ahead prices.
func (s *Store) SetPrices(requestedAt time.Time, prices []model.PricePoint, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = prices
	s.succeed(model.SourceDayAhead, requestedAt, len(prices), dropped)
}

// SetError records a failed fetch without touching stored data.
func (s *Store) SetError(src model.Source, requestedAt time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[src]
	st.Source = src
	st.LastError = err.Error()
	st.LastErrorAt = time.Now()
	if requestedAt.After(st.RequestedAt) {
		st.RequestedAt = requestedAt
	}
	s.status[src] = st
}

// succeed must be called with mu held.
// Overlapping refreshes can complete out of order; the older response still
// wins the write, but it is logged so it shows up when it happens.
func (s *Store) succeed(src model.Source, requestedAt time.Time, records, dropped int) {
	st := s.status[src]
	if requestedAt.Before(st.RequestedAt) {
		log.Warn().
			Str("source", string(src)).
			Time("requested_at", requestedAt).
			Time("stored_requested_at", st.RequestedAt).
			Msg("out-of-order response overwrote newer data")
	}
	st.Source = src
	st.RequestedAt = requestedAt
	st.LastSuccess = time.Now()
	st.LastError = ""
	st.Records = records
	st.Dropped = dropped
	s.status[src] = st
}

// Snapshot returns the current data and a copy of the status map.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := make(map[model.Source]Status, len(s.status))
	for k, v := range s.status {
		status[k] = v
	}
	return Snapshot{
		Quantiles:   s.quantiles,
		RangePoints: s.rangePoints,
		Bins:        s.bins,
		Prices:      s.prices,
		Status:      status,
	}
}

// Status returns the status of one source.
func (s *Store) Status(src model.Source) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[src]
}
