// Package forecast fits a single linear model of a daily time series made of a piecewise
// linear trend, Fourier seasonality and event masks.
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/forecast/options"
	"github.com/aouyang1/go-covidcast/linearmodel"
	"github.com/aouyang1/go-covidcast/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrNoFeatures               = errors.New("no non-zero features to fit")
)

// Forecast represents a single forecast model of a time series. Coefficients are solved
// with least squares when unregularized and with lasso coordinate descent otherwise. The
// intercept is the growth_intercept feature.
type Forecast struct {
	opt    *options.Options
	scores *Scores

	fLabels *feature.Labels
	coef    []float64

	trainStartTime  time.Time
	trainEndTime    time.Time
	residual        []float64
	trainComponents Components

	trained bool
}

// New creates a new forecast instance with the given options. If none are provided a default
// is used. The options are copied so a forecast never shares them with its caller.
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	return &Forecast{opt: opt.Copy()}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, fmt.Errorf("unable to decode model weights, %w", err)
	}

	opt := model.Options
	if opt == nil {
		opt = options.NewDefaultOptions()
	}

	return &Forecast{
		opt:            opt.Copy(),
		fLabels:        feature.NewLabels(labels),
		coef:           model.Weights.Coefficients(),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		scores:         model.Scores,
		trained:        true,
	}, nil
}

// Fit takes the input training data and fits the trend, seasonality and event weights. NaN
// observations are skipped.
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}

	trainingT := make([]time.Time, 0, len(trainingData.T))
	trainingY := make([]float64, 0, len(trainingData.Y))
	for i, v := range trainingData.Y {
		if math.IsNaN(v) {
			continue
		}
		trainingT = append(trainingT, trainingData.T[i])
		trainingY = append(trainingY, v)
	}
	if len(trainingT) <= 1 {
		return ErrInsufficientTrainingData
	}

	f.trainStartTime = trainingT[0]
	f.trainEndTime = trainingT[len(trainingT)-1]
	f.opt.ResolveSeasonality(f.trainEndTime.Sub(f.trainStartTime))
	f.opt.ChangepointOptions.GenerateAutoChangepoints(trainingT)

	x, err := f.opt.GenerateFeatures(trainingT, f.trainStartTime, f.trainEndTime)
	if err != nil {
		return err
	}
	dropZeroFeatures(x)
	if x.Len() == 0 {
		return ErrNoFeatures
	}

	f.fLabels = x.Labels()
	f.coef, err = f.solve(x.Matrix(false), mat.NewDense(len(trainingY), 1, trainingY))
	if err != nil {
		return err
	}
	f.trained = true

	// predict over the input times so NaN observations stay aligned
	predicted, comp, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.Y))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual
	return nil
}

func (f *Forecast) solve(x, y *mat.Dense) ([]float64, error) {
	m, n := x.Dims()
	if f.opt.Regularization == 0 && m > n {
		ols := linearmodel.NewOLSRegression(&linearmodel.OLSOptions{FitIntercept: false})
		err := ols.Fit(x, y)
		if err == nil {
			return ols.Coef(), nil
		}
		slog.Debug("least squares fit failed, falling back to coordinate descent", "error", err.Error())
	}

	lasso, err := linearmodel.NewLassoRegression(f.opt.NewLassoOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to initialize lasso regression, %w", err)
	}
	if err := lasso.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit lasso regression, %w", err)
	}
	return lasso.Coef(), nil
}

// dropZeroFeatures removes features that never take a value in the training window such
// as a holiday outside of the history
func dropZeroFeatures(x *feature.Set) {
	for _, f := range x.Labels().Labels() {
		vals, _ := x.Get(f)
		if floats.Max(vals) == 0 && floats.Min(vals) == 0 {
			x.Del(f)
		}
	}
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	x, err := f.opt.GenerateFeatures(t, f.trainStartTime, f.trainEndTime)
	if err != nil {
		return nil, Components{}, err
	}

	trendSet := x.Filter(feature.FeatureTypeGrowth).Update(x.Filter(feature.FeatureTypeChangepoint))
	seasSet := x.Filter(feature.FeatureTypeSeasonality)

	comp := Components{
		Trend:       f.runInference(trendSet, len(t)),
		Seasonality: f.runInference(seasSet, len(t)),
		Event:       f.runInference(x.Filter(feature.FeatureTypeEvent), len(t)),
		Seasonal:    make(map[string][]float64),
	}
	for _, cfg := range f.opt.SeasonalityOptions.SeasonalityConfigs {
		named := feature.NewSet()
		for _, feat := range seasSet.Labels().Labels() {
			if name, _ := feat.Get("name"); name == cfg.Name {
				vals, _ := seasSet.Get(feat)
				named.Set(feat, vals)
			}
		}
		comp.Seasonal[cfg.Name] = f.runInference(named, len(t))
	}

	return f.runInference(x, len(t)), comp, nil
}

// runInference sums the weighted features present in both x and the trained labels
func (f *Forecast) runInference(x *feature.Set, n int) []float64 {
	res := make([]float64, n)
	for i, label := range f.fLabels.Labels() {
		vals, exists := x.Get(label)
		if !exists || len(vals) != n {
			continue
		}
		floats.AddScaled(res, f.coef[i], vals)
	}
	return res
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}
	return f.fLabels.Labels()
}

// Coefficients returns a map of coefficients keyed by the string representation of each
// feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64, len(labels))
	for i, label := range labels {
		coef[label.String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the weight of the constant growth feature
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	if idx, exists := f.fLabels.Index(feature.Intercept()); exists {
		return f.coef[idx]
	}
	return 0
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, coefficients with their feature labels, and the fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	labels := f.fLabels.Labels()
	fws := make([]FeatureWeight, 0, len(f.coef))
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	return Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt.Copy(),
		Scores:         f.scores,
		Weights:        Weights{Coef: fws},
	}, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ m1*x1 + m2*x2 + ... skipping zero weights
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if len(f.coef) == 0 {
		return "", ErrNoModelCoefficients
	}

	terms := make([]string, 0, len(f.coef))
	for i, label := range f.fLabels.Labels() {
		if f.coef[i] == 0 {
			continue
		}
		terms = append(terms, fmt.Sprintf("%.2f*%s", f.coef[i], label))
	}
	if len(terms) == 0 {
		return "y ~ 0", nil
	}
	return "y ~ " + strings.Join(terms, " + "), nil
}

// Scores returns the fit scores for evaluating how well the resulting model fit the
// training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the training
// data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent is the growth and changepoint part of the fit over the training data
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the overall seasonal component of the model
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}

// TrainEndTime is the last non-NaN training time
func (f *Forecast) TrainEndTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainEndTime
}
