package analysis

import (
	"sort"
	"time"

	"forecast-dashboard/internal/model"
)

// Probability is the forecast mass wholly above and wholly below a price.
type Probability struct {
	Above float64 `json:"p_above"`
	Below float64 `json:"p_below"`
}

// AboveBelow computes, for bins sharing one timestamp:
//   - Below: mass of bins with upper_bound <= threshold
//   - Above: mass of bins with lower_bound >= threshold
//
// both divided by the total mass. A bin straddling the threshold counts for
// neither side; partial-bin mass is not estimated. Zero total mass yields 0/0.
func AboveBelow(points []model.RangePoint, threshold float64) Probability {
	var total, above, below float64
	for _, p := range points {
		total += p.Probability
		if p.LowerBound >= threshold {
			above += p.Probability
		}
		if p.UpperBound <= threshold {
			below += p.Probability
		}
	}
	if total == 0 {
		return Probability{}
	}
	return Probability{Above: above / total, Below: below / total}
}

// HourLayout is the bucket key used to join forecasts and prices. It carries
// no offset, so on the autumn DST change both local 02:00 hours share one
// bucket, unlike series labels which keep them apart.
const HourLayout = "2006-01-02 15"

// HourlyProbability joins one hour bucket with its day-ahead price.
type HourlyProbability struct {
	Hour  string  `json:"hour"`
	Price float64 `json:"price_eur_per_mwh"`
	Probability
}

// HourlyProbabilities buckets range points and prices by wall-clock hour in
// loc and evaluates AboveBelow against each hour's price. Hours without a
// price are skipped. If several prices fall in one hour (sub-hourly
// resolution, or the repeated hour on the autumn DST change) the latest one
// wins. Output is sorted by hour.
func HourlyProbabilities(loc *time.Location, points []model.RangePoint, prices []model.PricePoint) []HourlyProbability {
	priceByHour := make(map[string]float64, len(prices))
	for _, p := range prices {
		priceByHour[p.Time.In(loc).Format(HourLayout)] = p.Price
	}

	byHour := make(map[string][]model.RangePoint)
	for _, p := range points {
		t, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			continue
		}
		key := t.In(loc).Format(HourLayout)
		byHour[key] = append(byHour[key], p)
	}

	hours := make([]string, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Strings(hours)

	out := make([]HourlyProbability, 0, len(hours))
	for _, h := range hours {
		price, ok := priceByHour[h]
		if !ok {
			continue
		}
		out = append(out, HourlyProbability{
			Hour:        h,
			Price:       price,
			Probability: AboveBelow(byHour[h], price),
		})
	}
	return out
}
