package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"forecast-dashboard/internal/api/handlers"
	"forecast-dashboard/internal/api/models"
	"forecast-dashboard/internal/dashboard"
	"forecast-dashboard/internal/metrics"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	n := series.MustNormalizer(series.DefaultZone)
	store := dashboard.NewStore()
	now := time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC)

	store.SetQuantiles(now, series.BuildQuantileTable(n, []model.RawQuantilePoint{
		{StartDate: "2025-06-29 12:00:00+00:00", Quantile: 0.1, Value: 10},
		{StartDate: "2025-06-29 12:00:00+00:00", Quantile: 0.5, Value: 20},
		{StartDate: "2025-06-29 13:00:00+00:00", Quantile: 0.5, Value: 22},
	}, nil), 0)

	points := series.ToRangePoints(n, []model.RawRangePoint{
		{StartDate: "2025-06-29 12:00:00+00:00", LowerBound: 0, UpperBound: 50, Probability: 0.4},
		{StartDate: "2025-06-29 12:00:00+00:00", LowerBound: 50, UpperBound: 100, Probability: 0.6},
		{StartDate: "2025-06-29 13:00:00+00:00", LowerBound: 0, UpperBound: 50, Probability: 1},
	})
	store.SetRanges(now, points, series.GroupRangePoints(n, points, nil), 0)

	prices, errs := series.ExpandDocument(n, model.DayAheadDocument{Series: []model.DayAheadSeries{{
		Start: "2025-06-29T12:00Z", Resolution: "PT60M",
		Points: []model.DayAheadPosition{{Position: "1", Price: "50"}, {Position: "2", Price: "30"}},
	}}})
	require.Empty(t, errs)
	store.SetPrices(now, prices, 0)

	reg := prometheus.NewRegistry()
	return NewRouter(handlers.NewHandler(store, n, nil), RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
	})
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetForecast(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"labels": ["2025-06-29T14:00:00+02:00", "2025-06-29T15:00:00+02:00"],
		"columns": [
			{"key": 0.1, "values": [10, null]},
			{"key": 0.5, "values": [20, 22]}
		]
	}`, string(mustField(t, w.Body.Bytes(), "forecast")))

	w = get(t, r, "/api/v1/forecast?start=2025-06-29T13:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ForecastResponse](t, w)
	assert.Equal(t, []string{"2025-06-29T15:00:00+02:00"}, resp.Forecast.Labels)
	assert.Equal(t, model.SourceForecast, resp.Status.Source)
}

func TestGetForecast_LabelAsWindowBound(t *testing.T) {
	r := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/forecast?start=2025-06-29T15:00:00+02:00",
		"/api/v1/forecast?start=2025-06-29T15:00:00%2B02:00",
	} {
		w := get(t, r, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		resp := decode[models.ForecastResponse](t, w)
		assert.Equal(t, []string{"2025-06-29T15:00:00+02:00"}, resp.Forecast.Labels, target)
	}

	w := get(t, r, "/api/v1/forecast?end=2025-06-29T15:00:00+02:00")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ForecastResponse](t, w)
	assert.Equal(t, []string{"2025-06-29T14:00:00+02:00"}, resp.Forecast.Labels)
}

func TestGetForecast_BadWindow(t *testing.T) {
	r := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/forecast?start=yesterday",
		"/api/v1/forecast?end=13:00",
		"/api/v1/forecast?start=2025-06-29T13:00:00Z&end=2025-06-29T13:00:00Z",
	} {
		w := get(t, r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		resp := decode[models.ErrorResponse](t, w)
		assert.Equal(t, "INVALID_WINDOW", resp.Error.Code, target)
	}
}

func TestGetRangeForecast(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/rangeforecast")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.RangeForecastResponse](t, w)
	require.NotNil(t, resp.Table)
	assert.Equal(t, []series.Bin{{Lower: 0, Upper: 50}, {Lower: 50, Upper: 100}}, resp.Table.Keys())
	assert.Nil(t, resp.Rows)

	w = get(t, r, "/api/v1/rangeforecast?format=rows")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[models.RangeForecastResponse](t, w)
	assert.Nil(t, resp.Table)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 0.6, resp.Rows[0]["50-100"])
	assert.Nil(t, resp.Rows[1]["50-100"])

	w = get(t, r, "/api/v1/rangeforecast?format=csv")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestGetRangePoints(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/rangeforecast/points?end=2025-06-29T13:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.RangePointsResponse](t, w)
	require.Len(t, resp.Points, 2)
	assert.InDelta(t, 0.4/50, resp.Points[0].Density, 1e-12)
	assert.Equal(t, "2025-06-29T14:00:00+02:00", resp.Points[0].Timestamp)
}

func TestGetDayAhead(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dayahead")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.DayAheadResponse](t, w)
	require.Len(t, resp.Prices, 2)
	assert.Equal(t, "2025-06-29T14:00:00+02:00", resp.Prices[0].Timestamp)
	assert.Equal(t, 2, resp.Summary.Count)
	assert.Equal(t, 30.0, resp.Summary.Min)
	assert.Equal(t, 50.0, resp.Summary.Max)
}

func TestGetProbabilities(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/probabilities")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ProbabilitiesResponse](t, w)
	require.Len(t, resp.Hourly, 2)
	assert.Equal(t, "2025-06-29 14", resp.Hourly[0].Hour)
	assert.Equal(t, 50.0, resp.Hourly[0].Price)
	assert.InDelta(t, 0.6, resp.Hourly[0].Above, 1e-9)
	assert.InDelta(t, 0.4, resp.Hourly[0].Below, 1e-9)
	assert.Equal(t, 30.0, resp.Hourly[1].Price)
	assert.InDelta(t, 0, resp.Hourly[1].Below, 1e-9)

	w = get(t, r, "/api/v1/probabilities?threshold=50")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[models.ProbabilitiesResponse](t, w)
	require.NotNil(t, resp.Threshold)
	assert.Equal(t, 50.0, *resp.Threshold)
	require.Len(t, resp.PerTimestamp, 2)
	assert.Equal(t, "2025-06-29T14:00:00+02:00", resp.PerTimestamp[0].Timestamp)
	assert.InDelta(t, 0.6, resp.PerTimestamp[0].Above, 1e-9)
	assert.InDelta(t, 1, resp.PerTimestamp[1].Below, 1e-9)

	w = get(t, r, "/api/v1/probabilities?threshold=high")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboard(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.DashboardResponse](t, w)
	assert.Equal(t, 2, resp.Forecast.Len())
	assert.Equal(t, 2, resp.RangeForecast.Len())
	assert.Len(t, resp.DayAhead, 2)
	assert.Len(t, resp.Probabilities, 2)
	assert.Len(t, resp.Status, 3)
	assert.Empty(t, resp.Status[model.SourceDayAhead].LastError)
}

func TestEmptyStoreServesEmptyCharts(t *testing.T) {
	n := series.MustNormalizer(series.DefaultZone)
	r := NewRouter(handlers.NewHandler(dashboard.NewStore(), n, nil), RouterConfig{})

	w := get(t, r, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"labels": [], "columns": []}`, string(mustField(t, w.Body.Bytes(), "forecast")))
	assert.JSONEq(t, `{"source": "forecast", "records": 0, "dropped": 0, "stale": false}`,
		string(mustField(t, w.Body.Bytes(), "status")))

	w = get(t, r, "/api/v1/dayahead")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "prices")))

	assert.Equal(t, http.StatusNotFound, get(t, r, "/metrics").Code)
}

func TestListDomains(t *testing.T) {
	w := get(t, newTestRouter(t), "/api/v1/domains")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.DomainsResponse](t, w)
	assert.Equal(t, []string{"BE", "FR"}, resp.Countries)
	assert.Equal(t, "A44", resp.DocumentTypes["dayaheadprices"])
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/forecast", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFoundAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)

	get(t, r, "/api/v1/forecast")
	w = get(t, r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dashboard_http_requests_total{method="GET",route="/api/v1/forecast",status="200"} 1`)
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	raw, ok := m[field]
	require.True(t, ok, "missing field %q in %s", field, body)
	return raw
}
