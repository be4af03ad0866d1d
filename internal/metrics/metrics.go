// Package metrics records refresh and HTTP metrics with Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the dashboard's collectors. A nil *Recorder records nothing.
type Recorder struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	dropped       *prometheus.CounterVec
	lastSuccess   *prometheus.GaugeVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_fetches_total",
				Help: "Upstream fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		dropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_dropped_records_total",
				Help: "Records skipped during normalization",
			},
			[]string{"source"},
		),
		lastSuccess: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashboard_last_success_timestamp_seconds",
				Help: "Unix time of the last successful fetch",
			},
			[]string{"source"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// RecordFetch records one fetch attempt.
func (r *Recorder) RecordFetch(source string, seconds float64, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.fetchesTotal.WithLabelValues(source, outcome).Inc()
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordDropped adds n skipped records for source.
func (r *Recorder) RecordDropped(source string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dropped.WithLabelValues(source).Add(float64(n))
}

// RecordSuccess stamps the last successful fetch time.
func (r *Recorder) RecordSuccess(source string, unixSeconds float64) {
	if r == nil {
		return
	}
	r.lastSuccess.WithLabelValues(source).Set(unixSeconds)
}

// RecordRequest records a served HTTP request.
func (r *Recorder) RecordRequest(route, method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route).Observe(seconds)
}
