package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = Window{
	Start: time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 6, 29, 16, 0, 0, 0, time.UTC),
}

func TestForecastClient_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Empty(t, r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"start_date":"2025-06-29 12:00:00+00:00","quantile_value":0.5,"forecast_value":42.5}]`))
	}))
	defer srv.Close()

	c := NewForecastClient(srv.URL, "", time.Second)
	pts, err := c.Fetch(context.Background(), testWindow)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 0.5, pts[0].Quantile)
	assert.Equal(t, 42.5, pts[0].Value)
	assert.Contains(t, gotQuery, "start=2025-06-29T12%3A00%3A00Z")
	assert.Contains(t, gotQuery, "end=2025-06-29T16%3A00%3A00Z")
}

func TestForecastClient_UpstreamError(t *testing.T) {
	for status, code := range map[int]string{
		http.StatusUnauthorized:        "UNAUTHORIZED",
		http.StatusForbidden:           "INVALID_API_KEY",
		http.StatusTooManyRequests:     "RATE_LIMIT_EXCEEDED",
		http.StatusInternalServerError: "API_ERROR",
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(status)
			_, _ = w.Write([]byte("nope"))
		}))

		_, err := NewForecastClient(srv.URL, "", time.Second).Fetch(context.Background(), testWindow)
		srv.Close()

		var upErr *UpstreamError
		require.True(t, errors.As(err, &upErr), "status %d", status)
		assert.Equal(t, status, upErr.StatusCode)
		assert.Equal(t, code, upErr.Code)
		assert.Equal(t, "forecast", upErr.Source)
		if status == http.StatusTooManyRequests {
			assert.Equal(t, "30", upErr.RetryAfter)
		}
	}
}

func TestForecastClient_InvalidWindow(t *testing.T) {
	c := NewForecastClient("http://127.0.0.1:0", "", time.Second)
	_, err := c.Fetch(context.Background(), Window{})
	assert.Error(t, err)
	_, err = c.Fetch(context.Background(), Window{Start: testWindow.End, End: testWindow.Start})
	assert.Error(t, err)
}

func TestRangeForecastClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`[{"start_date":"2025-06-29 12:00:00+00:00","lower_bound":0,"upper_bound":50,"probability":0.4}]`))
	}))
	defer srv.Close()

	pts, err := NewRangeForecastClient(srv.URL, "secret-key", time.Second).Fetch(context.Background(), testWindow)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 50.0, pts[0].UpperBound)

	_, err = NewRangeForecastClient(srv.URL, "wrong", time.Second).Fetch(context.Background(), testWindow)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusForbidden, upErr.StatusCode)
}

func TestRangeForecastClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	_, err := NewRangeForecastClient(srv.URL, "k", time.Second).Fetch(context.Background(), testWindow)
	assert.ErrorIs(t, err, ErrInvalidUpstreamPayload)
}

func TestRangeForecastClient_MissingKey(t *testing.T) {
	_, err := NewRangeForecastClient("http://127.0.0.1:0", "", time.Second).Fetch(context.Background(), testWindow)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewForecastClient(srv.URL, "", time.Second).Fetch(ctx, testWindow)
	assert.ErrorIs(t, err, context.Canceled)
}
