// Package series turns raw upstream time-series payloads into aligned,
// timezone-correct, chart-ready structures.
//
// Every function in this package is pure: no I/O, no shared state.
// Malformed single records are skipped; structurally invalid input
// (an unsupported resolution, a series without a start) is reported as an error.
package series

import (
	"fmt"
	"strings"
	"time"

	// Embedded zone database so Europe/Brussels resolves on minimal images.
	_ "time/tzdata"
)

// DefaultZone is the reference timezone every instant is rendered in.
const DefaultZone = "Europe/Brussels"

// CanonicalLayout renders instants as ISO-8601 with a numeric offset.
// Upstream timestamps carry at most second precision.
const CanonicalLayout = "2006-01-02T15:04:05-07:00"

// Layouts with an explicit offset.
var offsetLayouts = []string{
	// SQL-style, as served by the forecast APIs.
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	// ISO-8601.
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
}

// Naive layouts are interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Normalizer converts upstream timestamps into canonical instants.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer builds a Normalizer rendering in the given IANA zone.
// An empty zone selects DefaultZone.
func NewNormalizer(zone string) (*Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc}, nil
}

// MustNormalizer is NewNormalizer for zones known at compile time.
func MustNormalizer(zone string) *Normalizer {
	n, err := NewNormalizer(zone)
	if err != nil {
		panic(err)
	}
	return n
}

// Location is the target timezone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Instant parses raw as SQL-style or ISO-8601 and returns it in the target
// zone. Timestamps without an offset are taken as UTC. ok is false when raw
// matches no accepted shape; callers drop the record.
func (n *Normalizer) Instant(raw string) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(n.loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(n.loc), true
		}
	}
	return time.Time{}, false
}

// Normalize returns the canonical string for raw, or ok=false to skip it.
// Normalize is idempotent: a canonical string normalizes to itself.
func (n *Normalizer) Normalize(raw string) (canonical string, ok bool) {
	t, ok := n.Instant(raw)
	if !ok {
		return "", false
	}
	return n.Format(t), true
}

// Format renders t canonically in the target zone.
func (n *Normalizer) Format(t time.Time) string {
	return t.In(n.loc).Format(CanonicalLayout)
}
