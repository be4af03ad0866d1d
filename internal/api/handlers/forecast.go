package handlers

import (
	"net/http"

	"forecast-dashboard/internal/api/models"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
)

// GetForecast handles GET /api/v1/forecast
func (h *Handler) GetForecast(c *gin.Context) {
	var req models.WindowQuery
	w, ok := h.bindWindow(c, &req, &req)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, models.ForecastResponse{
		Forecast: snap.Quantiles.Filter(w),
		Status:   snap.Status[model.SourceForecast],
	})
}

// GetRangeForecast handles GET /api/v1/rangeforecast
func (h *Handler) GetRangeForecast(c *gin.Context) {
	var req models.RangeForecastQuery
	w, ok := h.bindWindow(c, &req, &req.WindowQuery)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	table := snap.Bins.Filter(w)
	resp := models.RangeForecastResponse{Status: snap.Status[model.SourceRangeForecast]}
	if req.Format == "rows" {
		resp.Rows = series.Rows(table)
	} else {
		resp.Table = &table
	}
	c.JSON(http.StatusOK, resp)
}

// GetRangePoints handles GET /api/v1/rangeforecast/points
func (h *Handler) GetRangePoints(c *gin.Context) {
	var req models.WindowQuery
	w, ok := h.bindWindow(c, &req, &req)
	if !ok {
		return
	}
	snap := h.store.Snapshot()
	points := series.FilterRangePoints(h.norm, snap.RangePoints, w)
	views := make([]models.RangePointView, len(points))
	for i, p := range points {
		views[i] = models.RangePointView{RangePoint: p, Density: p.Density()}
	}
	c.JSON(http.StatusOK, models.RangePointsResponse{
		Points: views,
		Status: snap.Status[model.SourceRangeForecast],
	})
}
