package dashboard

import (
	"context"
	"time"

	"forecast-dashboard/internal/config"
	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/metrics"
	"forecast-dashboard/internal/model"
	"forecast-dashboard/internal/series"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// QuantileFetcher is satisfied by *data.ForecastClient.
type QuantileFetcher interface {
	Fetch(ctx context.Context, w data.Window) ([]model.RawQuantilePoint, error)
}

// RangeFetcher is satisfied by *data.RangeForecastClient.
type RangeFetcher interface {
	Fetch(ctx context.Context, w data.Window) ([]model.RawRangePoint, error)
}

// DayAheadFetcher is satisfied by *data.EntsoeClient.
type DayAheadFetcher interface {
	Fetch(ctx context.Context, q data.DayAheadQuery) (model.DayAheadDocument, error)
}

// Options tunes a Refresher. Zero windows fetch nothing useful, so callers
// normally copy them from config.
type Options struct {
	ForecastWindow config.WindowConfig
	RangeWindow    config.WindowConfig
	DayAheadWindow config.WindowConfig
	Country        string
	Dataset        string
	Merge          series.MergeFunc
	Metrics        *metrics.Recorder
	Now            func() time.Time
}

// Refresher fetches the three sources and stores the normalized results.
type Refresher struct {
	store    *Store
	norm     *series.Normalizer
	forecast QuantileFetcher
	ranges   RangeFetcher
	dayAhead DayAheadFetcher
	opts     Options
}

func NewRefresher(store *Store, norm *series.Normalizer, fc QuantileFetcher, rc RangeFetcher, dc DayAheadFetcher, opts Options) *Refresher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Merge == nil {
		opts.Merge = series.LastWriteWins
	}
	return &Refresher{
		store:    store,
		norm:     norm,
		forecast: fc,
		ranges:   rc,
		dayAhead: dc,
		opts:     opts,
	}
}

// Refresh runs one cycle. The three fetches run concurrently and fail
// independently: an error is logged and recorded on that source's status,
// and the other sources still update.
func (r *Refresher) Refresh(ctx context.Context) {
	now := r.opts.Now()
	started := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		r.refreshForecast(ctx, now)
		return nil
	})
	g.Go(func() error {
		r.refreshRanges(ctx, now)
		return nil
	})
	g.Go(func() error {
		r.refreshDayAhead(ctx, now)
		return nil
	})
	_ = g.Wait()

	log.Debug().Dur("duration", time.Since(started)).Msg("refresh cycle done")
}

func (r *Refresher) window(w config.WindowConfig, now time.Time) data.Window {
	start, end := w.Bounds(now, r.norm.Location())
	return data.Window{Start: start, End: end}
}

func (r *Refresher) refreshForecast(ctx context.Context, now time.Time) {
	src := model.SourceForecast
	started := time.Now()
	raw, err := r.forecast.Fetch(ctx, r.window(r.opts.ForecastWindow, now))
	r.opts.Metrics.RecordFetch(string(src), time.Since(started).Seconds(), err)
	if err != nil {
		r.fail(src, now, err)
		return
	}

	table := series.BuildQuantileTable(r.norm, raw, r.opts.Merge)
	dropped := series.DroppedQuantiles(r.norm, raw)
	r.opts.Metrics.RecordDropped(string(src), dropped)
	r.store.SetQuantiles(now, table, dropped)
	r.succeed(src, len(raw), dropped)
}

func (r *Refresher) refreshRanges(ctx context.Context, now time.Time) {
	src := model.SourceRangeForecast
	started := time.Now()
	raw, err := r.ranges.Fetch(ctx, r.window(r.opts.RangeWindow, now))
	r.opts.Metrics.RecordFetch(string(src), time.Since(started).Seconds(), err)
	if err != nil {
		r.fail(src, now, err)
		return
	}

	points := series.ToRangePoints(r.norm, raw)
	table := series.GroupRangePoints(r.norm, points, r.opts.Merge)
	dropped := len(raw) - len(points)
	r.opts.Metrics.RecordDropped(string(src), dropped)
	r.store.SetRanges(now, points, table, dropped)
	r.succeed(src, len(raw), dropped)
}

func (r *Refresher) refreshDayAhead(ctx context.Context, now time.Time) {
	src := model.SourceDayAhead
	started := time.Now()
	doc, err := r.dayAhead.Fetch(ctx, data.DayAheadQuery{
		Country: r.opts.Country,
		Dataset: r.opts.Dataset,
		Window:  r.window(r.opts.DayAheadWindow, now),
	})
	r.opts.Metrics.RecordFetch(string(src), time.Since(started).Seconds(), err)
	if err != nil {
		r.fail(src, now, err)
		return
	}

	prices, errs := series.ExpandDocument(r.norm, doc)
	for _, e := range errs {
		log.Warn().Str("source", string(src)).Err(e).Msg("series dropped")
	}

	total := 0
	for _, s := range doc.Series {
		total += len(s.Points)
	}
	dropped := total - len(prices)
	r.opts.Metrics.RecordDropped(string(src), dropped)
	r.store.SetPrices(now, prices, dropped)
	r.succeed(src, total, dropped)
}

func (r *Refresher) fail(src model.Source, requestedAt time.Time, err error) {
	log.Error().Str("source", string(src)).Err(err).Msg("fetch failed, keeping previous data")
	r.store.SetError(src, requestedAt, err)
}

func (r *Refresher) succeed(src model.Source, received, dropped int) {
	r.opts.Metrics.RecordSuccess(string(src), float64(time.Now().Unix()))
	log.Info().Str("source", string(src)).Int("received", received).Int("dropped", dropped).Msg("refreshed")
}
