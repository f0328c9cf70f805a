package forecaster

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/forecast"
	"github.com/aouyang1/go-covidcast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResults() *Results {
	return &Results{
		T:        timedataset.GenerateDailyT(dayZero, 3),
		Forecast: []float64{10, 11, 12},
		Upper:    []float64{12, 13, 14},
		Lower:    []float64{8, 9, 10},
		SeriesComponents: forecast.Components{
			Trend:       []float64{9, 10, 11},
			Seasonality: []float64{1, 1, 0.5},
			Event:       []float64{0, 0, 0.5},
			Seasonal: map[string][]float64{
				"yearly": {0.25, 0.25, 0.25},
				"weekly": {0.75, 0.75, 0.25},
			},
		},
	}
}

func TestResultsColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"ds", "yhat", "yhat_lower", "yhat_upper", "trend", "additive_terms", "weekly", "yearly", "event"},
		newTestResults().Columns(),
	)

	var nilRes *Results
	assert.Equal(t,
		[]string{"ds", "yhat", "yhat_lower", "yhat_upper", "trend", "additive_terms", "event"},
		nilRes.Columns(),
	)
}

func TestResultsRows(t *testing.T) {
	rows := newTestResults().Rows()
	require.Len(t, rows, 3)

	expected := Row{
		DS:            dayZero.AddDate(0, 0, 2),
		YHat:          12,
		YHatLower:     10,
		YHatUpper:     14,
		Trend:         11,
		AdditiveTerms: 1,
		Seasonal:      map[string]float64{"weekly": 0.25, "yearly": 0.25},
		Event:         0.5,
	}
	assert.Equal(t, expected, rows[2])

	testData := map[string]struct {
		col      string
		expected float64
		exists   bool
	}{
		"yhat":     {col: ColYHat, expected: 12, exists: true},
		"lower":    {col: ColYHatLower, expected: 10, exists: true},
		"upper":    {col: ColYHatUpper, expected: 14, exists: true},
		"trend":    {col: ColTrend, expected: 11, exists: true},
		"additive": {col: ColAdditiveTerms, expected: 1, exists: true},
		"event":    {col: ColEvent, expected: 0.5, exists: true},
		"weekly":   {col: "weekly", expected: 0.25, exists: true},
		"unknown":  {col: "daily"},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			v, exists := rows[2].Value(td.col)
			assert.Equal(t, td.exists, exists)
			assert.Equal(t, td.expected, v)
		})
	}
}

func TestResultsSlice(t *testing.T) {
	res := newTestResults()

	sliced := res.Slice(1, 10)
	require.Len(t, sliced.T, 2)
	assert.Equal(t, []float64{11, 12}, sliced.Forecast)
	assert.Equal(t, []float64{0.75, 0.25}, sliced.SeriesComponents.Seasonal["weekly"])
	assert.Nil(t, sliced.ResidualComponents.Trend)

	empty := res.Slice(5, 2)
	assert.Empty(t, empty.T)

	var nilRes *Results
	assert.Nil(t, nilRes.Slice(0, 1))
	assert.Nil(t, nilRes.Rows())
	assert.True(t, sliced.T[0].Equal(dayZero.Add(24*time.Hour)))
}

func TestResultsTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, newTestResults().TablePrint(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t,
		[]string{"ds", "yhat", "yhat_lower", "yhat_upper", "trend", "additive_terms", "weekly", "yearly", "event"},
		strings.Fields(lines[0]),
	)
	assert.Equal(t,
		[]string{"2020-01-24", "12.000", "10.000", "14.000", "11.000", "1.000", "0.250", "0.250", "0.500"},
		strings.Fields(lines[3]),
	)
}
