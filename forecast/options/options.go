// Package options contains all forecast options for a linear fit of a univariate daily time series
package options

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/linearmodel"
)

const (
	LabelTimeEpoch = "epoch"

	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"
)

var (
	ErrUnknownTimeFeature = errors.New("unknown time feature")
	ErrUnknownGrowthType  = errors.New("unknown growth type")
	ErrNegativeRegularize = errors.New("negative regularization")
)

// Options configures a forecast by specifying changepoints, seasonality orders, events
// and an optional regularization parameter where higher values remove more features
// that contribute the least to the fit. A zero regularization fits with ordinary least
// squares whenever the design allows it.
type Options struct {
	ChangepointOptions ChangepointOptions `json:"changepoint_options"`

	Regularization float64 `json:"regularization"`
	Iterations     int     `json:"iterations"`
	Tolerance      float64 `json:"tolerance"`

	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	EventOptions       EventOptions       `json:"event_options"`
	WeekendOptions     WeekendOptions     `json:"weekend_options"`
	MaskWindow         string             `json:"mask_window"`
	GrowthType         string             `json:"growth_type"`
}

// NewDefaultOptions returns a set of default forecast options for daily series. Trend
// bends at automatically placed changepoints and weekly/yearly seasonality is modelled
// once the history is long enough.
func NewDefaultOptions() *Options {
	return &Options{
		ChangepointOptions: NewDefaultChangepointOptions(),
		Iterations:         linearmodel.DefaultIterations,
		Tolerance:          linearmodel.DefaultTolerance,
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		MaskWindow:         WindowRectangular,
		GrowthType:         feature.GrowthLinear,
	}
}

// Copy returns a copy of the options that shares no slices with the original
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	cp := *o
	cp.ChangepointOptions.Changepoints = slices.Clone(o.ChangepointOptions.Changepoints)
	cp.SeasonalityOptions.SeasonalityConfigs = slices.Clone(o.SeasonalityOptions.SeasonalityConfigs)
	cp.EventOptions.Events = slices.Clone(o.EventOptions.Events)
	cp.EventOptions.Holidays = slices.Clone(o.EventOptions.Holidays)
	return &cp
}

// Validate checks the options for values that cannot be fit
func (o *Options) Validate() error {
	if o.Regularization < 0 {
		return ErrNegativeRegularize
	}
	switch o.GrowthType {
	case "", feature.GrowthIntercept, feature.GrowthLinear:
	default:
		return fmt.Errorf("%q, %w", o.GrowthType, ErrUnknownGrowthType)
	}
	for _, name := range o.EventOptions.Holidays {
		if _, err := HolidayByName(name); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSeasonality fixes the seasonalities active for a training span. With weekends
// modelled the weekly orders are capped at MaxWeeklyOrdersWithWeekend.
func (o *Options) ResolveSeasonality(span time.Duration) {
	o.SeasonalityOptions = o.SeasonalityOptions.Resolve(span)
	if !o.WeekendOptions.Enabled {
		return
	}
	for i, cfg := range o.SeasonalityOptions.SeasonalityConfigs {
		if cfg.Period == weeklyPeriod && cfg.Orders > MaxWeeklyOrdersWithWeekend {
			o.SeasonalityOptions.SeasonalityConfigs[i].Orders = MaxWeeklyOrdersWithWeekend
		}
	}
}

// NewLassoOptions returns the coordinate descent options. The intercept is a growth
// feature so it is not added by the regression.
func (o *Options) NewLassoOptions() *linearmodel.LassoOptions {
	lassoOpt := linearmodel.NewDefaultLassoOptions()
	lassoOpt.Lambda = o.Regularization
	lassoOpt.FitIntercept = false

	if o.Iterations > 0 {
		lassoOpt.Iterations = o.Iterations
	}
	if o.Tolerance > 0 {
		lassoOpt.Tolerance = o.Tolerance
	}
	return lassoOpt
}

// GenerateFeatures builds every regressor for the time points relative to the training
// window
func (o *Options) GenerateFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	epochFeat := feature.NewTime(LabelTimeEpoch)
	epoch := epochFeat.Generate(t)

	x := feature.NewSet()
	o.generateGrowthFeatures(x, epoch, trainStartTime, trainEndTime)
	x.Update(o.ChangepointOptions.GenerateFeatures(t, trainEndTime))

	seasFeat, err := o.SeasonalityOptions.GenerateFeatures(epoch)
	if err != nil {
		return nil, fmt.Errorf("unable to generate seasonality features, %w", err)
	}
	x.Update(seasFeat)
	x.Update(o.EventOptions.GenerateFeatures(t, o.MaskWindow))
	x.Update(o.WeekendOptions.GenerateFeatures(t, o.MaskWindow))
	return x, nil
}

func (o *Options) generateGrowthFeatures(x *feature.Set, epoch []float64, trainStartTime, trainEndTime time.Time) {
	interceptFeat := feature.Intercept()
	x.Set(interceptFeat, interceptFeat.Generate(epoch, trainStartTime, trainEndTime))

	if o.GrowthType != feature.GrowthLinear || !trainEndTime.After(trainStartTime) {
		return
	}
	linearFeat := feature.Linear()
	x.Set(linearFeat, linearFeat.Generate(epoch, trainStartTime, trainEndTime))
}

// TablePrint writes a readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if o == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s%sRegularization: %.3f    Growth: %s\n",
		prefix, strings.Repeat(indent, indentGrowth), o.Regularization, o.GrowthType); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.EventOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.WeekendOptions.TablePrint(w, prefix, indent, indentGrowth)
}
