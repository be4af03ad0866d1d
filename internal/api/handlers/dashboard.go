package handlers

import (
	"net/http"

	"forecast-dashboard/internal/analysis"
	"forecast-dashboard/internal/api/models"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
)

// GetDashboard handles GET /api/v1/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	var req models.WindowQuery
	w, ok := h.bindWindow(c, &req, &req)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	prices := series.FilterPrices(snap.Prices, w)
	points := series.FilterRangePoints(h.norm, snap.RangePoints, w)

	c.JSON(http.StatusOK, models.DashboardResponse{
		Forecast:      snap.Quantiles.Filter(w),
		RangeForecast: snap.Bins.Filter(w),
		DayAhead:      prices,
		Summary:       analysis.SummarizePrices(prices),
		Probabilities: analysis.HourlyProbabilities(h.norm.Location(), points, prices),
		Status:        snap.Status,
	})
}

// ListDomains handles GET /api/v1/domains
func (h *Handler) ListDomains(c *gin.Context) {
	list := h.domains.List()
	c.JSON(http.StatusOK, models.DomainsResponse{
		Countries:     h.domains.Countries(),
		Datasets:      h.domains.Datasets(),
		Zones:         list.Zones,
		DocumentTypes: list.DocumentTypes,
	})
}
