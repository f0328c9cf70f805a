package feature

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureDecodeUnmarshal(t *testing.T) {
	testData := map[string]struct {
		feat     Feature
		expected string
	}{
		"time": {
			feat:     NewTime("epoch"),
			expected: "tfeat_epoch",
		},
		"intercept": {
			feat:     Intercept(),
			expected: "growth_intercept",
		},
		"linear": {
			feat:     Linear(),
			expected: "growth_linear",
		},
		"changepoint slope": {
			feat:     NewChangepoint("auto_3", ChangepointCompSlope),
			expected: "chpnt_auto_3_slope",
		},
		"seasonality": {
			feat:     NewSeasonality("epoch_weekly", FourierCompCos, 2),
			expected: "seas_epoch_weekly_02_cos",
		},
		"event": {
			feat:     NewEvent("Christmas_Day_2020"),
			expected: "event_Christmas_Day_2020",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.feat.String())

			out, err := json.Marshal(td.feat.Decode())
			require.NoError(t, err)

			feat, err := New(td.feat.Type())
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(out, feat))
			assert.Equal(t, td.expected, feat.String())

			name, exists := feat.Get("name")
			assert.True(t, exists)
			assert.NotEmpty(t, name)

			_, exists = feat.Get("unknown")
			assert.False(t, exists)
		})
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(FeatureType("bogus"))
	assert.ErrorIs(t, err, ErrUnknownFeatureType)
}

func TestSeasonalityUnmarshalBadOrder(t *testing.T) {
	var s Seasonality
	err := json.Unmarshal([]byte(`{"name":"weekly","fourier_component":"sin","order":"x"}`), &s)
	assert.Error(t, err)
}

func TestGrowthGenerate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	tSeries := []time.Time{start, start.AddDate(0, 0, 2), end, end.AddDate(0, 0, 4)}
	epoch := NewTime("epoch").Generate(tSeries)

	testData := map[string]struct {
		feat     *Growth
		expected []float64
	}{
		"intercept": {
			feat:     Intercept(),
			expected: []float64{1, 1, 1, 1},
		},
		"linear": {
			feat:     Linear(),
			expected: []float64{0, 0.5, 1, 2},
		},
		"unknown": {
			feat: NewGrowth("quadratic"),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.feat.Generate(epoch, start, end)
			if td.expected == nil {
				assert.Nil(t, res)
				return
			}
			assert.InDeltaSlice(t, td.expected, res, 1e-9)
		})
	}
}

func TestSeasonalityGenerate(t *testing.T) {
	period := 4.0
	epoch := []float64{0, 1, 2, 3}

	sin := NewSeasonality("s", FourierCompSin, 1).Generate(epoch, 1, period)
	cos := NewSeasonality("s", FourierCompCos, 1).Generate(epoch, 1, period)
	assert.InDeltaSlice(t, []float64{0, 1, 0, -1}, sin, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 0, -1, 0}, cos, 1e-9)
}
