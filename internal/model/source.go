package model

// Source identifies one upstream data feed.
// Keep these values stable; they show up in logs, metrics and API output.
type Source string

const (
	SourceForecast      Source = "forecast"
	SourceRangeForecast Source = "range_forecast"
	SourceDayAhead      Source = "day_ahead"
)

// Sources lists every feed polled by a refresh cycle.
func Sources() []Source {
	return []Source{SourceForecast, SourceRangeForecast, SourceDayAhead}
}

