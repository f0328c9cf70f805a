package options

import (
	"bytes"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/linearmodel"
	"github.com/aouyang1/go-covidcast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dayZero = time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return dayZero.AddDate(0, 0, d)
}

func TestNewLassoOptions(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *linearmodel.LassoOptions
	}{
		"defaults": {
			opt: &Options{},
			expected: &linearmodel.LassoOptions{
				Lambda:       0,
				Iterations:   linearmodel.DefaultIterations,
				Tolerance:    linearmodel.DefaultTolerance,
				FitIntercept: false,
			},
		},
		"with overrides": {
			opt: &Options{
				Regularization: 2.5,
				Iterations:     3,
				Tolerance:      1e-1,
			},
			expected: &linearmodel.LassoOptions{
				Lambda:       2.5,
				Iterations:   3,
				Tolerance:    1e-1,
				FitIntercept: false,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.opt.NewLassoOptions())
		})
	}
}

func TestValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"defaults":                {opt: NewDefaultOptions()},
		"negative regularization": {opt: &Options{Regularization: -1}, err: ErrNegativeRegularize},
		"unknown growth":          {opt: &Options{GrowthType: "logistic"}, err: ErrUnknownGrowthType},
		"unknown holiday": {
			opt: &Options{EventOptions: EventOptions{Holidays: []string{"groundhog"}}},
			err: ErrUnknownHoliday,
		},
		"known holiday": {
			opt: &Options{EventOptions: EventOptions{Holidays: []string{"Christmas"}}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCopy(t *testing.T) {
	opt := NewDefaultOptions()
	opt.ChangepointOptions.Changepoints = []Changepoint{NewChangepoint("a", day(3))}

	cp := opt.Copy()
	cp.ChangepointOptions.Changepoints[0].Name = "b"
	cp.SeasonalityOptions.SeasonalityConfigs[0].Orders = 99

	assert.Equal(t, "a", opt.ChangepointOptions.Changepoints[0].Name)
	assert.Equal(t, 3, opt.SeasonalityOptions.SeasonalityConfigs[0].Orders)

	var nilOpt *Options
	assert.Nil(t, nilOpt.Copy())
}

func TestGenerateFeatures(t *testing.T) {
	tSeries := timedataset.GenerateDailyT(dayZero, 5)

	testData := map[string]struct {
		opt      *Options
		expected []string
	}{
		"intercept only": {
			opt:      &Options{GrowthType: feature.GrowthIntercept},
			expected: []string{"growth_intercept"},
		},
		"linear growth with changepoint": {
			opt: &Options{
				GrowthType: feature.GrowthLinear,
				ChangepointOptions: ChangepointOptions{
					Changepoints: []Changepoint{NewChangepoint("c", day(2))},
					EnableGrowth: true,
				},
			},
			expected: []string{"chpnt_c_slope", "growth_intercept", "growth_linear"},
		},
		"weekly seasonality and event": {
			opt: &Options{
				GrowthType: feature.GrowthIntercept,
				SeasonalityOptions: SeasonalityOptions{
					SeasonalityConfigs: []SeasonalityConfig{NewWeeklySeasonalityConfig(1)},
				},
				EventOptions: EventOptions{
					Events: []Event{NewEvent("lockdown", day(1), day(3))},
				},
			},
			expected: []string{
				"event_lockdown",
				"growth_intercept",
				"seas_weekly_01_cos",
				"seas_weekly_01_sin",
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := td.opt.GenerateFeatures(tSeries, tSeries[0], tSeries[len(tSeries)-1])
			require.NoError(t, err)

			var names []string
			for _, f := range x.Labels().Labels() {
				names = append(names, f.String())
			}
			assert.Equal(t, td.expected, names)
		})
	}
}

func TestGenerateGrowthFeatures(t *testing.T) {
	tSeries := timedataset.GenerateDailyT(dayZero, 5)
	opt := &Options{GrowthType: feature.GrowthLinear}

	x, err := opt.GenerateFeatures(tSeries, tSeries[0], tSeries[len(tSeries)-1])
	require.NoError(t, err)

	intercept, exists := x.Get(feature.Intercept())
	require.True(t, exists)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, intercept)

	linear, exists := x.Get(feature.Linear())
	require.True(t, exists)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, linear, 1e-9)
}

func TestOptionsTablePrint(t *testing.T) {
	opt := NewDefaultOptions()
	opt.ChangepointOptions.Changepoints = []Changepoint{NewChangepoint("auto_0", day(10))}
	opt.EventOptions.Holidays = []string{HolidayChristmas}

	var buf bytes.Buffer
	require.NoError(t, opt.TablePrint(&buf, "", "  ", 0))

	out := buf.String()
	assert.Contains(t, out, "Regularization: 0.000")
	assert.Contains(t, out, "Seasonality:")
	assert.Contains(t, out, "weekly")
	assert.Contains(t, out, "2020-02-01")
	assert.Contains(t, out, "christmas")
}
