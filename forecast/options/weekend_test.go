package options

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekendValidate(t *testing.T) {
	w := WeekendOptions{DurBefore: 72 * time.Hour, DurAfter: -48 * time.Hour}
	w.Validate()
	assert.Equal(t, MaxWeekendDurBuffer, w.DurBefore)
	assert.Equal(t, -MaxWeekendDurBuffer, w.DurAfter)
}

func TestWeekendGenerateFeatures(t *testing.T) {
	// dayZero is a Wednesday
	testData := map[string]struct {
		opt      WeekendOptions
		t        []time.Time
		window   string
		expected []float64
	}{
		"disabled": {
			opt: WeekendOptions{},
			t:   timedataset.GenerateDailyT(dayZero, 7),
		},
		"saturday and sunday": {
			opt:      WeekendOptions{Enabled: true},
			t:        timedataset.GenerateDailyT(dayZero, 7),
			window:   WindowRectangular,
			expected: []float64{0, 0, 0, 1, 1, 0, 0},
		},
		"friday through monday": {
			opt:      WeekendOptions{Enabled: true, DurBefore: 24 * time.Hour, DurAfter: 24 * time.Hour},
			t:        timedataset.GenerateDailyT(dayZero, 7),
			window:   WindowRectangular,
			expected: []float64{0, 0, 1, 1, 1, 1, 0},
		},
		"partial weekends padded": {
			opt:      WeekendOptions{Enabled: true},
			t:        timedataset.GenerateDailyT(day(4), 7),
			window:   WindowTriangular,
			expected: []float64{0, 0, 0, 0, 0, 0, 0},
		},
		"unknown timezone uses dataset timezone": {
			opt:      WeekendOptions{Enabled: true, TimezoneOverride: "Mars/Olympus_Mons"},
			t:        timedataset.GenerateDailyT(dayZero, 7),
			window:   WindowRectangular,
			expected: []float64{0, 0, 0, 1, 1, 0, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.opt.GenerateFeatures(td.t, td.window)
			if td.expected == nil {
				assert.Equal(t, 0, res.Len())
				return
			}
			require.Equal(t, 1, res.Len())
			vals, exists := res.Get(feature.NewEvent(LabelEventWeekend))
			require.True(t, exists)
			for _, v := range vals {
				assert.False(t, math.IsNaN(v))
			}
			assert.InDeltaSlice(t, td.expected, vals, 1e-9)
		})
	}
}

func TestResolveSeasonalityWithWeekend(t *testing.T) {
	span := 60 * 24 * time.Hour

	opt := NewDefaultOptions()
	opt.ResolveSeasonality(span)
	require.Len(t, opt.SeasonalityOptions.SeasonalityConfigs, 1)
	assert.Equal(t, 3, opt.SeasonalityOptions.SeasonalityConfigs[0].Orders)

	opt = NewDefaultOptions()
	opt.WeekendOptions.Enabled = true
	opt.ResolveSeasonality(span)
	require.Len(t, opt.SeasonalityOptions.SeasonalityConfigs, 1)
	assert.Equal(t, LabelSeasWeekly, opt.SeasonalityOptions.SeasonalityConfigs[0].Name)
	assert.Equal(t, MaxWeeklyOrdersWithWeekend, opt.SeasonalityOptions.SeasonalityConfigs[0].Orders)
}

func TestGenerateFeaturesWithWeekend(t *testing.T) {
	tSeries := timedataset.GenerateDailyT(dayZero, 14)
	opt := NewDefaultOptions()
	opt.WeekendOptions.Enabled = true

	x, err := opt.GenerateFeatures(tSeries, tSeries[0], tSeries[len(tSeries)-1])
	require.NoError(t, err)
	mask, exists := x.Get(feature.NewEvent(LabelEventWeekend))
	require.True(t, exists)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 1, 1, 0, 0}, mask)
}

func TestWeekendTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WeekendOptions{}.TablePrint(&buf, "", "  ", 0))
	assert.Equal(t, "Weekend: None\n", buf.String())

	buf.Reset()
	require.NoError(t, WeekendOptions{Enabled: true, DurAfter: 12 * time.Hour}.TablePrint(&buf, "", "  ", 1))
	assert.Equal(t, "  Weekend: before 0s, after 12h0m0s, timezone \"\"\n", buf.String())
}
