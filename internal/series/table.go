package series

import (
	"sort"
	"time"
)

// MergeFunc decides the stored value when two records share the same
// (timestamp, column) key. existing is the value kept so far.
type MergeFunc func(existing, incoming float64) float64

// LastWriteWins keeps the later record in input order. It is the default
// policy: upstream feeds re-send corrected values after the originals.
func LastWriteWins(_, incoming float64) float64 { return incoming }

// FirstWriteWins keeps the earliest record in input order.
func FirstWriteWins(existing, _ float64) float64 { return existing }

// Column is one chart dataset, index-aligned with Table.Labels.
// A nil entry means the key had no value at that label.
type Column[K comparable] struct {
	Key    K          `json:"key"`
	Values []*float64 `json:"values"`
}

// Table is a time-indexed, column-per-key structure.
// Every column has exactly len(Labels) values.
type Table[K comparable] struct {
	Labels  []string    `json:"labels"`
	Columns []Column[K] `json:"columns"`

	// instants backs Labels for filtering without reparsing.
	instants []time.Time
}

// cell is one grouped observation.
type cell[K comparable] struct {
	at    time.Time
	key   K
	value float64
}

// tabulate groups cells by instant and key, then null-fills the grid.
// Labels are ordered chronologically (sorting the canonical strings would
// misorder the repeated wall-clock hour when DST ends). Keys follow compare.
func tabulate[K comparable](n *Normalizer, cells []cell[K], compare func(a, b K) int, merge MergeFunc) Table[K] {
	if merge == nil {
		merge = LastWriteWins
	}

	type slot struct {
		at     time.Time
		values map[K]float64
	}
	grouped := make(map[int64]*slot)
	keySeen := make(map[K]struct{})
	var keys []K

	for _, c := range cells {
		id := c.at.UnixNano()
		s, ok := grouped[id]
		if !ok {
			s = &slot{at: c.at, values: make(map[K]float64)}
			grouped[id] = s
		}
		if prev, dup := s.values[c.key]; dup {
			s.values[c.key] = merge(prev, c.value)
		} else {
			s.values[c.key] = c.value
		}
		if _, ok := keySeen[c.key]; !ok {
			keySeen[c.key] = struct{}{}
			keys = append(keys, c.key)
		}
	}

	slots := make([]*slot, 0, len(grouped))
	for _, s := range grouped {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].at.Before(slots[j].at) })
	sort.Slice(keys, func(i, j int) bool { return compare(keys[i], keys[j]) < 0 })

	t := Table[K]{
		Labels:   make([]string, len(slots)),
		Columns:  make([]Column[K], len(keys)),
		instants: make([]time.Time, len(slots)),
	}
	for i, s := range slots {
		t.Labels[i] = n.Format(s.at)
		t.instants[i] = s.at
	}
	for ci, k := range keys {
		values := make([]*float64, len(slots))
		for li, s := range slots {
			if v, ok := s.values[k]; ok {
				v := v
				values[li] = &v
			}
		}
		t.Columns[ci] = Column[K]{Key: k, Values: values}
	}
	return t
}

// Column returns the values for key.
func (t Table[K]) Column(key K) ([]*float64, bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c.Values, true
		}
	}
	return nil, false
}

// Keys returns the column keys in table order.
func (t Table[K]) Keys() []K {
	keys := make([]K, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Len is the number of labels.
func (t Table[K]) Len() int { return len(t.Labels) }
