package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/forecast/options"
)

const (
	// DefaultIntervalZscore bounds an 80% uncertainty interval of a normal residual
	DefaultIntervalZscore = 1.2816
	DefaultResidualWindow = 14
)

// OutlierOptions configures the passes that blank out residual outliers and refit
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options holds the options of the series model, the residual model fit to the rolling
// residual deviation and how outliers are handled
type Options struct {
	SeriesOptions   *options.Options `json:"series_options"`
	ResidualOptions *options.Options `json:"residual_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options"`
	ResidualWindow int             `json:"residual_window"`
	ResidualZscore float64         `json:"residual_zscore"`
}

// NewDefaultResidualOptions models the uncertainty as a slowly bending trend with weekly
// seasonality
func NewDefaultResidualOptions() *options.Options {
	opt := options.NewDefaultOptions()
	opt.ChangepointOptions.AutoNumChangepoints = 5
	opt.SeasonalityOptions = options.SeasonalityOptions{
		SeasonalityConfigs: []options.SeasonalityConfig{options.NewWeeklySeasonalityConfig(2)},
		Auto:               true,
		MinCycles:          options.DefaultMinCycles,
	}
	opt.GrowthType = feature.GrowthLinear
	return opt
}

func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions:   options.NewDefaultOptions(),
		ResidualOptions: NewDefaultResidualOptions(),
		OutlierOptions:  NewOutlierOptions(),
		ResidualWindow:  DefaultResidualWindow,
		ResidualZscore:  DefaultIntervalZscore,
	}
}

func (o *Options) TablePrint(w io.Writer, prefix, indent string) error {
	if o == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%sForecaster:\n", prefix); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sResidual Window: %d    Residual Z-Score: %.4f\n",
		prefix, indent, o.ResidualWindow, o.ResidualZscore); err != nil {
		return err
	}
	if o.OutlierOptions == nil {
		_, err := fmt.Fprintf(w, "%s%sOutliers: None\n", prefix, indent)
		return err
	}
	_, err := fmt.Fprintf(w, "%s%sOutliers: %d passes, percentiles [%.2f, %.2f], tukey factor %.2f\n",
		prefix, indent,
		o.OutlierOptions.NumPasses,
		o.OutlierOptions.LowerPercentile, o.OutlierOptions.UpperPercentile,
		o.OutlierOptions.TukeyFactor)
	return err
}
