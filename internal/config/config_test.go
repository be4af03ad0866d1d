package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_KEY", "ENTSOE_API_KEY", "FORECAST_API_KEY", "API_PORT", "API_ENV", "LOG_LEVEL", "CONFIG_PATH"} {
		t.Setenv(k, "")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	c, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "development", c.Server.Env)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Server.AllowedOrigins)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, 30*time.Second, c.Refresh.Interval)
	assert.Equal(t, "Europe/Brussels", c.Refresh.Timezone)

	assert.Equal(t, time.Hour, c.Forecast.Window.Lookback)
	assert.Equal(t, 6*time.Hour, c.Forecast.Window.Lookahead)
	assert.Equal(t, 30*time.Second, c.Forecast.Timeout)

	assert.Equal(t, 4*time.Hour, c.RangeForecast.Window.Lookahead)
	assert.Equal(t, "file-key", c.RangeForecast.APIKey)

	assert.Equal(t, "FR", c.Entsoe.Country)
	assert.Equal(t, "dayaheadprices", c.Entsoe.Dataset)
	assert.Equal(t, 48*time.Hour, c.Entsoe.Window.Lookahead)
	assert.True(t, c.Entsoe.Window.AlignToDay)

	assert.Equal(t, map[string]string{"FR": "10YFR-RTE------C"}, c.Domains.Zones)
	assert.Nil(t, c.Domains.DocumentTypes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "env-key")
	t.Setenv("ENTSOE_API_KEY", "env-entsoe")
	t.Setenv("API_PORT", "7070")

	c, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.RangeForecast.APIKey)
	assert.Equal(t, "env-entsoe", c.Entsoe.APIKey)
	assert.Equal(t, "7070", c.Server.Port)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("ENTSOE_API_KEY", "e")

	c, err := Load("testdata/does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, 60*time.Second, c.Refresh.Interval)
	assert.Equal(t, "BE", c.Entsoe.Country)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	c, err := LoadUnchecked("")
	require.NoError(t, err)
	assert.ErrorContains(t, c.Validate(), "range_forecast.api_key")

	c.RangeForecast.APIKey = "k"
	c.Entsoe.APIKey = "e"
	require.NoError(t, c.Validate())

	c.Refresh.Timezone = "Nowhere/Nothing"
	assert.Error(t, c.Validate())
	c.Refresh.Timezone = "Europe/Brussels"

	c.Log.Level = "loud"
	assert.Error(t, c.Validate())
	c.Log.Level = "info"

	c.Refresh.Interval = 100 * time.Millisecond
	assert.Error(t, c.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestWindowConfig_Bounds(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Brussels")
	require.NoError(t, err)
	now := time.Date(2025, 7, 3, 22, 30, 0, 0, time.UTC) // 00:30 local on 4 July

	start, end := WindowConfig{Lookahead: 4 * time.Hour}.Bounds(now, loc)
	assert.True(t, start.Equal(now))
	assert.True(t, end.Equal(now.Add(4*time.Hour)))

	start, end = WindowConfig{Lookahead: 48 * time.Hour, AlignToDay: true}.Bounds(now, loc)
	assert.True(t, start.Equal(time.Date(2025, 7, 3, 22, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2025, 7, 5, 22, 0, 0, 0, time.UTC)))

	start, _ = WindowConfig{Lookback: time.Hour, Lookahead: time.Hour}.Bounds(now, loc)
	assert.True(t, start.Equal(now.Add(-time.Hour)))
}

func TestPath(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "./config.yaml", Path())
	t.Setenv("CONFIG_PATH", "/etc/dashboard.yaml")
	assert.Equal(t, "/etc/dashboard.yaml", Path())
}
