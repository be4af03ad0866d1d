package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server        ServerConfig  `yaml:"server"`
	Log           LogConfig     `yaml:"log"`
	Refresh       RefreshConfig `yaml:"refresh"`
	Forecast      SourceConfig  `yaml:"forecast"`
	RangeForecast SourceConfig  `yaml:"range_forecast"`
	Entsoe        EntsoeConfig  `yaml:"entsoe"`
	Domains       DomainsConfig `yaml:"domains"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" default:"8080" validate:"required,numeric"`
	Env            string        `yaml:"env" default:"development" validate:"oneof=development production test"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout" default:"10s" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" default:"30s" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" default:"60s" validate:"min=1s"`
	Timezone string        `yaml:"timezone" default:"Europe/Brussels" validate:"required,timezone"`
}

// WindowConfig positions a fetch window relative to the refresh time.
// With AlignToDay the start is truncated to local midnight first.
type WindowConfig struct {
	Lookback   time.Duration `yaml:"lookback"`
	Lookahead  time.Duration `yaml:"lookahead" default:"4h" validate:"gt=0"`
	AlignToDay bool          `yaml:"align_to_day"`
}

type SourceConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	Window  WindowConfig  `yaml:"window"`
}

type EntsoeConfig struct {
	SourceConfig `yaml:",inline"`
	Country      string `yaml:"country" default:"BE" validate:"required"`
	Dataset      string `yaml:"dataset" default:"dayaheadprices" validate:"required"`
}

// DomainsConfig extends the built-in bidding zone and document type tables.
// File, when set, replaces the built-ins; the maps are overlaid on top.
type DomainsConfig struct {
	File          string            `yaml:"file"`
	Zones         map[string]string `yaml:"zones"`
	DocumentTypes map[string]string `yaml:"document_types"`
}

var validate = validator.New()

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the file, applies environment overrides and defaults,
// but does not validate. An empty path or a missing file yields a config
// built from environment and defaults only.
func LoadUnchecked(path string) (*Config, error) {
	var c Config
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	c.applyEnv()
	// Day-ahead prices are published per delivery day: fetch today and tomorrow.
	if c.Entsoe.Window == (WindowConfig{}) {
		c.Entsoe.Window = WindowConfig{Lookahead: 48 * time.Hour, AlignToDay: true}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// applyEnv lets secrets and deployment knobs come from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("FORECAST_API_KEY"); v != "" {
		c.Forecast.APIKey = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.RangeForecast.APIKey = v
	}
	if v := os.Getenv("ENTSOE_API_KEY"); v != "" {
		c.Entsoe.APIKey = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	if c.RangeForecast.APIKey == "" {
		return errors.New("range_forecast.api_key is required (or set API_KEY)")
	}
	if c.Entsoe.APIKey == "" {
		return errors.New("entsoe.api_key is required (or set ENTSOE_API_KEY)")
	}
	return nil
}

// Path returns the config file path from CONFIG_PATH or the default.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yaml"
}

// Bounds returns the [start, end) fetch window for now.
func (w WindowConfig) Bounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	base := now.In(loc)
	if w.AlignToDay {
		y, m, d := base.Date()
		base = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	start := base.Add(-w.Lookback)
	return start, base.Add(w.Lookahead)
}

// Location loads the refresh timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Refresh.Timezone)
}
