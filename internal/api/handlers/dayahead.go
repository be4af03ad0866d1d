package handlers

import (
	"net/http"
	"sort"
	"time"

	"forecast-dashboard/internal/analysis"
	"forecast-dashboard/internal/api/models"
	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
)

// GetDayAhead handles GET /api/v1/dayahead
func (h *Handler) GetDayAhead(c *gin.Context) {
	var req models.WindowQuery
	w, ok := h.bindWindow(c, &req, &req)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	prices := series.FilterPrices(snap.Prices, w)
	c.JSON(http.StatusOK, models.DayAheadResponse{
		Prices:  prices,
		Summary: analysis.SummarizePrices(prices),
		Status:  snap.Status[model.SourceDayAhead],
	})
}

// GetProbabilities handles GET /api/v1/probabilities
func (h *Handler) GetProbabilities(c *gin.Context) {
	var req models.ProbabilityQuery
	w, ok := h.bindWindow(c, &req, &req.WindowQuery)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	points := series.FilterRangePoints(h.norm, snap.RangePoints, w)

	if req.Threshold == nil {
		prices := series.FilterPrices(snap.Prices, w)
		c.JSON(http.StatusOK, models.ProbabilitiesResponse{
			Hourly: analysis.HourlyProbabilities(h.norm.Location(), points, prices),
		})
		return
	}

	c.JSON(http.StatusOK, models.ProbabilitiesResponse{
		Threshold:    req.Threshold,
		PerTimestamp: h.perTimestamp(points, *req.Threshold),
	})
}

// perTimestamp evaluates threshold for every forecast timestamp in time order.
func (h *Handler) perTimestamp(points []model.RangePoint, threshold float64) []models.TimestampProbability {
	groups := data.GroupByTimestamp(points)
	type entry struct {
		at time.Time
		ts string
	}
	entries := make([]entry, 0, len(groups))
	for ts := range groups {
		at, ok := h.norm.Instant(ts)
		if !ok {
			continue
		}
		entries = append(entries, entry{at: at, ts: ts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	out := make([]models.TimestampProbability, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.TimestampProbability{
			Timestamp:   e.ts,
			Probability: analysis.AboveBelow(groups[e.ts], threshold),
		})
	}
	return out
}
