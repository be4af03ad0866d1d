package models

// WindowQuery restricts a response to [start, end). Both bounds are optional
// and accept the same timestamp shapes as the upstream feeds.
type WindowQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// RangeForecastQuery selects the bin table layout.
type RangeForecastQuery struct {
	WindowQuery
	Format string `form:"format" binding:"omitempty,oneof=table rows"`
}

// ProbabilityQuery evaluates against a fixed threshold when set, otherwise
// against each hour's day-ahead price.
type ProbabilityQuery struct {
	WindowQuery
	Threshold *float64 `form:"threshold"`
}
