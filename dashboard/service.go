// Package dashboard serves the covid-19 dashboard: the date window, overview charts and
// per country forecasts over http.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-covidcast/chart"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/aouyang1/go-covidcast/report"
	"github.com/aouyang1/go-covidcast/store"
	"github.com/go-echarts/go-echarts/v2/components"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service answers the dashboard queries over a loaded dataset
type Service struct {
	data    *dataset.Dataset
	minDate time.Time
	maxDate time.Time
	cache   *store.Store
	opt     *forecaster.Options
	timeout time.Duration
	logger  *zap.Logger
}

// ServiceOption configures optional Service dependencies
type ServiceOption func(s *Service)

// WithStore caches fitted models in st
func WithStore(st *store.Store) ServiceOption {
	return func(s *Service) {
		s.cache = st
	}
}

// WithForecasterOptions sets the options every metric is fit with
func WithForecasterOptions(opt *forecaster.Options) ServiceOption {
	return func(s *Service) {
		s.opt = opt
	}
}

// WithForecastTimeout bounds the time spent on one country forecast
func WithForecastTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a service over a non empty dataset
func NewService(ds *dataset.Dataset, opts ...ServiceOption) (*Service, error) {
	minDate, maxDate, err := ds.Bounds()
	if err != nil {
		return nil, err
	}
	s := &Service{
		data:    ds,
		minDate: minDate,
		maxDate: maxDate,
		opt:     forecaster.NewDefaultOptions(),
		timeout: time.Minute,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bounds returns the first and last date of the dataset
func (s *Service) Bounds() (time.Time, time.Time) {
	return s.minDate, s.maxDate
}

// Data returns the full dataset
func (s *Service) Data() *dataset.Dataset {
	return s.data
}

// Selection is a resolved date window
type Selection struct {
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
	Warning string           `json:"warning,omitempty"`
	Data    *dataset.Dataset `json:"-"`
}

// Window resolves a date window. Zero dates default to the dataset bounds. A start
// before the first date or an end after the last date is reported in Warning but never
// blocks the selection.
func (s *Service) Window(start, end time.Time) Selection {
	if start.IsZero() {
		start = s.minDate
	}
	if end.IsZero() {
		end = s.maxDate
	}
	sel := Selection{Start: dataset.Day(start), End: dataset.Day(end)}

	filtered, err := s.data.Window(sel.Start, sel.End)
	if err != nil {
		sel.Warning = err.Error()
	}
	sel.Data = filtered
	return sel
}

// Overview charts the maps and pies of the full dataset and the bar races of the window
func (s *Service) Overview(sel Selection) (*components.Page, error) {
	return chart.OverviewPage(s.data, sel.Data)
}

// Rankings are the top countries per metric
type Rankings map[dataset.Metric][]dataset.Total

// Top ranks the n countries with the largest summed metric over ds
func Top(ds *dataset.Dataset, n int) Rankings {
	r := make(Rankings, len(dataset.Metrics))
	for _, m := range dataset.Metrics {
		r[m] = ds.TopN(m, n)
	}
	return r
}

// MetricForecast is the history and prediction of one metric
type MetricForecast struct {
	Metric  dataset.Metric
	T       []time.Time
	Y       []float64
	Results *forecaster.Results
	Model   forecaster.Model
	Cached  bool
}

// CountryForecast holds the forecast of every metric of a country
type CountryForecast struct {
	Country string
	Years   int
	Horizon int
	Window  Selection
	Metrics []MetricForecast
}

// Charts lists the metric forecasts in chart form
func (cf *CountryForecast) Charts() []chart.Forecast {
	out := make([]chart.Forecast, 0, len(cf.Metrics))
	for _, mf := range cf.Metrics {
		out = append(out, chart.Forecast{Metric: mf.Metric, T: mf.T, Y: mf.Y, Results: mf.Results})
	}
	return out
}

// Metric returns the forecast of m
func (cf *CountryForecast) Metric(m dataset.Metric) (MetricForecast, bool) {
	for _, mf := range cf.Metrics {
		if mf.Metric == m {
			return mf, true
		}
	}
	return MetricForecast{}, false
}

// Forecast fits every metric of a country over the selected window concurrently and
// predicts the history plus years*365 daily points
func (s *Service) Forecast(ctx context.Context, sel Selection, country string, years int) (*CountryForecast, error) {
	horizon, err := forecaster.Horizon(years)
	if err != nil {
		return nil, err
	}
	if !sel.Data.HasCountry(country) {
		return nil, fmt.Errorf("%q in window, %w", country, dataset.ErrUnknownCountry)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	metrics := make([]MetricForecast, len(dataset.Metrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range dataset.Metrics {
		g.Go(func() error {
			mf, err := s.forecastMetric(gctx, sel, country, m, years)
			if err != nil {
				return fmt.Errorf("unable to forecast %s, %w", m, err)
			}
			metrics[i] = mf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CountryForecast{
		Country: country,
		Years:   years,
		Horizon: horizon,
		Window:  sel,
		Metrics: metrics,
	}, nil
}

func (s *Service) forecastMetric(ctx context.Context, sel Selection, country string, m dataset.Metric, years int) (MetricForecast, error) {
	mf := MetricForecast{Metric: m}

	t, y, err := sel.Data.Series(country, m)
	if err != nil {
		return mf, err
	}
	mf.T, mf.Y = t, y

	fp, err := store.Fingerprint(t, y, s.opt)
	if err != nil {
		return mf, err
	}
	key := store.Key{Country: country, Metric: m, Start: sel.Start, End: sel.End, Fingerprint: fp}
	f, cached, err := s.loadOrFit(ctx, key, t, y)
	if err != nil {
		return mf, err
	}
	mf.Cached = cached

	if mf.Model, err = f.Model(); err != nil {
		return mf, err
	}

	if err := ctx.Err(); err != nil {
		return mf, err
	}
	if mf.Results, err = f.PredictYears(t, years); err != nil {
		return mf, fmt.Errorf("unable to predict, %w", err)
	}
	return mf, nil
}

// loadOrFit returns the cached model of key or fits a new one and caches it
func (s *Service) loadOrFit(ctx context.Context, key store.Key, t []time.Time, y []float64) (*forecaster.Forecaster, bool, error) {
	if s.cache != nil {
		model, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			f, err := forecaster.NewFromModel(model)
			if err == nil {
				s.logger.Debug("loaded cached model", zap.Stringer("key", key))
				return f, true, nil
			}
			s.logger.Warn("discarding unreadable cached model", zap.Stringer("key", key), zap.Error(err))
		case !errors.Is(err, store.ErrNotFound):
			s.logger.Warn("unable to read model cache", zap.Stringer("key", key), zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f, err := forecaster.New(s.opt)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	if err := f.FitContext(ctx, t, y); err != nil {
		return nil, false, fmt.Errorf("unable to fit, %w", err)
	}
	s.logger.Debug("fit model",
		zap.Stringer("key", key),
		zap.Int("samples", len(t)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		model, err := f.Model()
		if err == nil {
			err = s.cache.Put(ctx, key, model)
		}
		if err != nil {
			s.logger.Warn("unable to cache model", zap.Stringer("key", key), zap.Error(err))
		}
	}
	return f, false, nil
}

// Report collects the window, rankings and, when a country is given, its forecast into
// an exportable report
func (s *Service) Report(ctx context.Context, sel Selection, country string, years int) (*report.Report, error) {
	r := &report.Report{
		Window:   report.Window{Start: sel.Start, End: sel.End},
		Warning:  sel.Warning,
		Filtered: sel.Data,
		Top5:     Top(sel.Data, chart.TopBarCount),
		Top10:    Top(s.data, chart.TopPieCount),
	}
	if country == "" {
		return r, nil
	}

	cf, err := s.Forecast(ctx, sel, country, years)
	if err != nil {
		return nil, err
	}
	for _, mf := range cf.Metrics {
		r.Forecasts = append(r.Forecasts, report.Forecast{
			Country: country,
			Metric:  mf.Metric,
			Results: mf.Results,
		})
	}
	return r, nil
}
