// Package api wires the HTTP routes of the dashboard.
package api

import (
	"forecast-dashboard/internal/api/handlers"
	"forecast-dashboard/internal/api/middleware"
	"forecast-dashboard/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds what NewRouter needs besides the handler.
type RouterConfig struct {
	AllowedOrigins []string
	Metrics        *metrics.Recorder
	Gatherer       prometheus.Gatherer // nil disables /metrics
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(h *handlers.Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Metrics(cfg.Metrics))
	router.NoRoute(middleware.NotFound)

	router.GET("/health", handlers.Health)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/forecast", h.GetForecast)
		v1.GET("/rangeforecast", h.GetRangeForecast)
		v1.GET("/rangeforecast/points", h.GetRangePoints)
		v1.GET("/dayahead", h.GetDayAhead)
		v1.GET("/probabilities", h.GetProbabilities)
		v1.GET("/dashboard", h.GetDashboard)
		v1.GET("/domains", h.ListDomains)
	}

	return router
}
