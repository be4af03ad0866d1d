package series

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"forecast-dashboard/internal/model"
)

// Bin is a price interval [Lower, Upper) in EUR/MWh.
type Bin struct {
	Lower float64
	Upper float64
}

// String renders the bin as "lower-upper" using the shortest decimal form
// that parses back to the same float64, so distinct bins never collide.
func (b Bin) String() string {
	return formatBound(b.Lower) + "-" + formatBound(b.Upper)
}

func formatBound(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func (b Bin) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bin) UnmarshalText(text []byte) error {
	parsed, err := ParseBin(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBin reverses Bin.String, including negative bounds ("-20--10").
func ParseBin(label string) (Bin, error) {
	s := strings.TrimSpace(label)
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		prev := s[i-1]
		if (prev < '0' || prev > '9') && prev != '.' {
			continue
		}
		lo, err1 := strconv.ParseFloat(s[:i], 64)
		hi, err2 := strconv.ParseFloat(s[i+1:], 64)
		if err1 == nil && err2 == nil {
			return Bin{Lower: lo, Upper: hi}, nil
		}
	}
	return Bin{}, fmt.Errorf("invalid bin label %q", label)
}

func compareBins(a, b Bin) int {
	if c := cmp.Compare(a.Lower, b.Lower); c != 0 {
		return c
	}
	return cmp.Compare(a.Upper, b.Upper)
}

// BinTable has one column per price bin, ordered by (lower, upper).
type BinTable = Table[Bin]

// ToRangePoints normalizes range forecast timestamps, dropping unparseable rows.
func ToRangePoints(n *Normalizer, raw []model.RawRangePoint) []model.RangePoint {
	out := make([]model.RangePoint, 0, len(raw))
	for _, r := range raw {
		ts, ok := n.Normalize(r.StartDate)
		if !ok {
			continue
		}
		out = append(out, model.RangePoint{
			Timestamp:   ts,
			LowerBound:  r.LowerBound,
			UpperBound:  r.UpperBound,
			Probability: r.Probability,
		})
	}
	return out
}

// GroupRangePoints builds the per-bin table from normalized points.
// merge resolves duplicate (timestamp, bin) keys; nil means LastWriteWins.
func GroupRangePoints(n *Normalizer, points []model.RangePoint, merge MergeFunc) BinTable {
	cells := make([]cell[Bin], 0, len(points))
	for _, p := range points {
		at, ok := n.Instant(p.Timestamp)
		if !ok {
			continue
		}
		cells = append(cells, cell[Bin]{
			at:    at,
			key:   Bin{Lower: p.LowerBound, Upper: p.UpperBound},
			value: p.Probability,
		})
	}
	return tabulate(n, cells, compareBins, merge)
}

// BuildBinTable is ToRangePoints followed by GroupRangePoints.
func BuildBinTable(n *Normalizer, raw []model.RawRangePoint, merge MergeFunc) BinTable {
	return GroupRangePoints(n, ToRangePoints(n, raw), merge)
}

// Rows converts a bin table to row-oriented records:
// {"timestamp": label, "<bin>": probability-or-null, ...}.
func Rows(t BinTable) []map[string]any {
	rows := make([]map[string]any, len(t.Labels))
	for i, label := range t.Labels {
		row := make(map[string]any, len(t.Columns)+1)
		row["timestamp"] = label
		for _, c := range t.Columns {
			if v := c.Values[i]; v != nil {
				row[c.Key.String()] = *v
			} else {
				row[c.Key.String()] = nil
			}
		}
		rows[i] = row
	}
	return rows
}
