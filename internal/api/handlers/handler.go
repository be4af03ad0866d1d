package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"forecast-dashboard/internal/api/models"
	"forecast-dashboard/internal/dashboard"
	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
)

// Handler serves chart-ready data from the dashboard store.
type Handler struct {
	store   *dashboard.Store
	norm    *series.Normalizer
	domains *data.Domains
}

// NewHandler creates a new handler
func NewHandler(store *dashboard.Store, norm *series.Normalizer, domains *data.Domains) *Handler {
	if domains == nil {
		domains = data.NewDomains(nil, nil)
	}
	return &Handler{store: store, norm: norm, domains: domains}
}

var errEmptyWindow = errors.New("start must be before end")

// queryInstant parses a query timestamp. An unescaped "+" in the offset
// arrives as a space, so "2025-06-29T14:00:00 02:00" is read as +02:00.
func (h *Handler) queryInstant(raw string) (time.Time, bool) {
	if t, ok := h.norm.Instant(raw); ok {
		return t, true
	}
	raw = strings.TrimSpace(raw)
	i := strings.LastIndexByte(raw, ' ')
	if i < 0 {
		return time.Time{}, false
	}
	return h.norm.Instant(raw[:i] + "+" + raw[i+1:])
}

// window turns optional start/end query values into a series.Window.
func (h *Handler) window(q models.WindowQuery) (series.Window, error) {
	var w series.Window
	if q.Start != "" {
		t, ok := h.queryInstant(q.Start)
		if !ok {
			return w, errors.New("start is not a valid timestamp")
		}
		w.Start = t
	}
	if q.End != "" {
		t, ok := h.queryInstant(q.End)
		if !ok {
			return w, errors.New("end is not a valid timestamp")
		}
		w.End = t
	}
	if !w.Start.IsZero() && !w.End.IsZero() && !w.Start.Before(w.End) {
		return w, errEmptyWindow
	}
	return w, nil
}

// bindWindow binds query parameters into req and parses its window.
// On failure it writes a 400 and returns false.
func (h *Handler) bindWindow(c *gin.Context, req any, q *models.WindowQuery) (series.Window, bool) {
	if err := c.ShouldBindQuery(req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return series.Window{}, false
	}
	w, err := h.window(*q)
	if err != nil {
		badRequest(c, "INVALID_WINDOW", err.Error())
		return series.Window{}, false
	}
	return w, true
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
