// Package export writes normalized series as CSV.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"forecast-dashboard/internal/analysis"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"
)

// WriteTableCSV writes one row per label and one column per key.
// Missing values are written as empty cells.
func WriteTableCSV[K comparable](out io.Writer, t series.Table[K], keyName func(K) string) error {
	w := csv.NewWriter(out)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "timestamp")
	for _, c := range t.Columns {
		header = append(header, keyName(c.Key))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, label := range t.Labels {
		row := make([]string, 0, len(header))
		row = append(row, label)
		for _, c := range t.Columns {
			if v := c.Values[i]; v != nil {
				row = append(row, fmtFloat(*v))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteQuantilesCSV writes a quantile table; columns are named "q<quantile>".
func WriteQuantilesCSV(out io.Writer, t series.QuantileTable) error {
	return WriteTableCSV(out, t, func(q float64) string {
		return "q" + strconv.FormatFloat(q, 'f', -1, 64)
	})
}

// WriteBinsCSV writes a bin table; columns are named by bin label.
func WriteBinsCSV(out io.Writer, t series.BinTable) error {
	return WriteTableCSV(out, t, series.Bin.String)
}

// WritePricesCSV writes day-ahead prices.
func WritePricesCSV(out io.Writer, prices []model.PricePoint) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"timestamp", "price_eur_per_mwh"}); err != nil {
		return err
	}
	for _, p := range prices {
		if err := w.Write([]string{p.Timestamp, fmtFloat(p.Price)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteProbabilitiesCSV writes the hourly probability table.
func WriteProbabilitiesCSV(out io.Writer, rows []analysis.HourlyProbability) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"hour", "price_eur_per_mwh", "p_above", "p_below"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Hour, fmtFloat(r.Price), fmtFloat(r.Above), fmtFloat(r.Below)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// CreateFile creates path and any missing parent directories.
func CreateFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
