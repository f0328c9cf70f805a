// Package forecaster fits a series forecast along with a forecast of its rolling residual
// deviation to produce predictions with uncertainty bounds.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/forecast"
	"github.com/aouyang1/go-covidcast/stats"
	"github.com/aouyang1/go-covidcast/timedataset"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientResidual = errors.New("insufficient samples from residual after outlier removal")
	ErrNoOptionsInModel     = errors.New("no options set in model")
	ErrUntrainedForecaster  = errors.New("forecaster has not been trained yet")
)

const (
	MinResidualWindow       = 2
	MinResidualSize         = 2
	MinResidualWindowFactor = 4
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast   *forecast.Forecast
	residualForecast *forecast.Forecast

	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	residual        []float64
}

// New creates a new instance of a Forecaster using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	cp := *opt
	if cp.OutlierOptions != nil {
		outlierOpt := *cp.OutlierOptions
		cp.OutlierOptions = &outlierOpt
	}

	seriesForecast, err := forecast.New(cp.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}
	residualForecast, err := forecast.New(cp.ResidualOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast residual, %w", err)
	}
	return &Forecaster{
		opt:              &cp,
		seriesForecast:   seriesForecast,
		residualForecast: residualForecast,
	}, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model generated by
// a previous call to Model()
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	opt := *model.Options
	opt.SeriesOptions = model.Series.Options
	opt.ResidualOptions = model.Residual.Options

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}
	residualForecast, err := forecast.NewFromModel(model.Residual)
	if err != nil {
		return nil, fmt.Errorf("unable to load from residual model, %w", err)
	}
	return &Forecaster{
		opt:              &opt,
		seriesForecast:   seriesForecast,
		residualForecast: residualForecast,
	}, nil
}

// Fit trains the series model, removing outliers over several passes, and then trains the
// residual model on the rolling deviation of what remains
func (f *Forecaster) Fit(t []time.Time, y []float64) error {
	return f.FitContext(context.Background(), t, y)
}

// FitContext is Fit stopping with the context error once ctx is done. ctx is checked
// before every series fit pass and before the residual fit.
func (f *Forecaster) FitContext(ctx context.Context, t []time.Time, y []float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	f.fitTrainingData = td.Copy()

	residual, err := f.fitSeriesWithOutliers(ctx, td.T, td.Y)
	if err != nil {
		return err
	}
	f.residual = residual

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("unable to fit residual, %w", err)
	}
	if err := f.fitResidual(td.T, residual); err != nil {
		return err
	}

	f.fitResults, err = f.Predict(td.T)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}
	return nil
}

// fitSeriesWithOutliers refits after setting the detected outliers of y to NaN. y is
// modified in place.
func (f *Forecaster) fitSeriesWithOutliers(ctx context.Context, t []time.Time, y []float64) ([]float64, error) {
	numPasses := 0
	if f.opt.OutlierOptions != nil {
		numPasses = f.opt.OutlierOptions.NumPasses
	}

	var residual []float64
	for i := 0; i <= numPasses; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("unable to forecast series, %w", err)
		}
		if err := f.seriesForecast.Fit(t, y); err != nil {
			return nil, fmt.Errorf("unable to forecast series, %w", err)
		}
		residual = f.seriesForecast.Residuals()

		if f.opt.OutlierOptions == nil || i == numPasses {
			break
		}

		outlierIdxs := stats.DetectOutliers(
			residual,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)
		if len(outlierIdxs) == 0 {
			break
		}
		for _, idx := range outlierIdxs {
			y[idx] = math.NaN()
		}
	}
	return residual, nil
}

// fitResidual fits the scaled rolling standard deviation of the residual. NaN residuals
// from outliers are skipped inside each window.
func (f *Forecaster) fitResidual(t []time.Time, residual []float64) error {
	if len(residual) < MinResidualSize {
		return ErrInsufficientResidual
	}

	// limit residual window to a quarter of the residual
	window := f.opt.ResidualWindow
	if len(residual)/MinResidualWindowFactor < window {
		window = len(residual) / MinResidualWindowFactor
	}
	window = max(window, MinResidualWindow)
	f.opt.ResidualWindow = window

	numWindows := len(residual) - window + 1
	stddevSeries := make([]float64, numWindows)
	vals := make([]float64, 0, window)
	for i := range numWindows {
		vals = vals[:0]
		for _, r := range residual[i : i+window] {
			if !math.IsNaN(r) {
				vals = append(vals, r)
			}
		}
		if len(vals) < 2 {
			stddevSeries[i] = math.NaN()
			continue
		}
		_, stddev := stat.MeanStdDev(vals, nil)
		stddevSeries[i] = f.opt.ResidualZscore * stddev
	}

	// the rolling window delays the deviation by half a window so align it to the center
	start := window / 2
	residualT := t[start : start+numWindows]

	if err := f.residualForecast.Fit(residualT, stddevSeries); err != nil {
		return fmt.Errorf("unable to forecast residual, %w", err)
	}
	return nil
}

// Predict takes in any set of time samples and generates a forecast with upper and lower
// bounds per time point
func (f *Forecaster) Predict(t []time.Time) (*Results, error) {
	if f == nil || f.seriesForecast == nil {
		return nil, forecast.ErrUninitializedForecast
	}

	seriesRes, seriesComp, err := f.seriesForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}
	residualRes, residualComp, err := f.residualForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict residual forecasts, %w", err)
	}

	upper := make([]float64, len(seriesRes))
	lower := make([]float64, len(seriesRes))
	for i, yhat := range seriesRes {
		// the deviation can never be negative
		dev := max(residualRes[i], 0.0)
		upper[i] = yhat + dev
		lower[i] = yhat - dev
	}

	return &Results{
		T:                  append([]time.Time(nil), t...),
		Forecast:           seriesRes,
		Upper:              upper,
		Lower:              lower,
		SeriesComponents:   seriesComp,
		ResidualComponents: residualComp,
	}, nil
}

// Residuals returns the difference between the final series fit and the training data.
// Outliers are NaN.
func (f *Forecaster) Residuals() []float64 {
	return append([]float64(nil), f.residual...)
}

// TrendComponent returns the trend component over the training data
func (f *Forecaster) TrendComponent() []float64 {
	return f.seriesForecast.TrendComponent()
}

// SeasonalityComponent returns the seasonality component over the training data
func (f *Forecaster) SeasonalityComponent() []float64 {
	return f.seriesForecast.SeasonalityComponent()
}

// Scores returns how well the series model fit the training data
func (f *Forecaster) Scores() forecast.Scores {
	return f.seriesForecast.Scores()
}

// Model generates a serializeable representation of the fit options, series model, and
// uncertainty model. This can initialize a new Forecaster for immediate predictions.
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	residualModel, err := f.residualForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch residual model, %w", err)
	}
	opt := *f.opt
	return Model{
		Options:  &opt,
		Series:   seriesModel,
		Residual: residualModel,
	}, nil
}

// SeriesModelEq returns the fit series model as y ~ m1*x1 + m2*x2 ...
func (f *Forecaster) SeriesModelEq() (string, error) {
	return f.seriesForecast.ModelEq()
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the results over the training times
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}
