package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/api/handlers"
	"forecast-dashboard/internal/config"
	"forecast-dashboard/internal/dashboard"
	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/logging"
	"forecast-dashboard/internal/metrics"
	"forecast-dashboard/internal/series"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api server failed")
	}
}

func run() error {
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	log.Info().Str("config", cfgPath).Str("env", cfg.Server.Env).Msg("configuration loaded")

	norm, err := series.NewNormalizer(cfg.Refresh.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	domains, err := loadDomains(cfg.Domains)
	if err != nil {
		return err
	}
	store := dashboard.NewStore()
	refresher := dashboard.NewRefresher(
		store,
		norm,
		data.NewForecastClient(cfg.Forecast.BaseURL, cfg.Forecast.APIKey, cfg.Forecast.Timeout),
		data.NewRangeForecastClient(cfg.RangeForecast.BaseURL, cfg.RangeForecast.APIKey, cfg.RangeForecast.Timeout),
		data.NewEntsoeClient(cfg.Entsoe.BaseURL, cfg.Entsoe.APIKey, cfg.Entsoe.Timeout, domains),
		dashboard.Options{
			ForecastWindow: cfg.Forecast.Window,
			RangeWindow:    cfg.RangeForecast.Window,
			DayAheadWindow: cfg.Entsoe.Window,
			Country:        cfg.Entsoe.Country,
			Dataset:        cfg.Entsoe.Dataset,
			Metrics:        rec,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := dashboard.NewScheduler(ctx, refresher, cfg.Refresh.Interval)
	if err != nil {
		return err
	}
	go sched.RunNow()
	sched.Start()
	defer sched.Stop()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handlers.NewHandler(store, norm, domains), api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        rec,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadDomains(cfg config.DomainsConfig) (*data.Domains, error) {
	base := data.NewDomains(nil, nil)
	if cfg.File != "" {
		loaded, err := data.LoadDomains(cfg.File)
		if err != nil {
			return nil, err
		}
		base = loaded
	}
	return base.With(cfg.Zones, cfg.DocumentTypes), nil
}
