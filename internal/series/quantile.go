package series

import (
	"cmp"

	"forecast-dashboard/internal/model"
)

// QuantileTable has one column per forecast quantile, ascending.
type QuantileTable = Table[float64]

// BuildQuantileTable groups quantile forecasts by canonical instant.
// Points whose timestamp cannot be parsed are dropped. merge resolves
// duplicate (timestamp, quantile) keys; nil means LastWriteWins.
func BuildQuantileTable(n *Normalizer, points []model.RawQuantilePoint, merge MergeFunc) QuantileTable {
	cells := make([]cell[float64], 0, len(points))
	for _, p := range points {
		at, ok := n.Instant(p.StartDate)
		if !ok {
			continue
		}
		cells = append(cells, cell[float64]{at: at, key: p.Quantile, value: p.Value})
	}
	return tabulate(n, cells, cmp.Compare[float64], merge)
}

// DroppedQuantiles counts points BuildQuantileTable would discard.
func DroppedQuantiles(n *Normalizer, points []model.RawQuantilePoint) int {
	dropped := 0
	for _, p := range points {
		if _, ok := n.Instant(p.StartDate); !ok {
			dropped++
		}
	}
	return dropped
}
