package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecast"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `Date,Country,Confirmed,Deaths,Recovered
2020-01-22,Italy,10,1,0
2020-01-22,Spain,5,0,0
2020-01-22,US,20,2,1
2020-01-23,Italy,15,2,1
2020-01-23,Spain,8,1,0
2020-01-23,US,30,3,2
2020-01-24,US,45,4,
2020-01-24,Italy,25,3,3
2020-01-24,France,40,5,4
`

func day(d int) time.Time {
	return time.Date(2020, 1, 22+d, 0, 0, 0, 0, time.UTC)
}

func loadTest(t *testing.T) *dataset.Dataset {
	ds, err := dataset.Load(strings.NewReader(testCSV))
	require.NoError(t, err)
	return ds
}

func testResults() *forecaster.Results {
	return &forecaster.Results{
		T:        []time.Time{day(0), day(1), day(2), day(3)},
		Forecast: []float64{10, 15, 20, 25},
		Upper:    []float64{12, 17, 22, 28},
		Lower:    []float64{8, 13, 18, 22},
		SeriesComponents: forecast.Components{
			Trend:       []float64{9, 14, 19, 24},
			Seasonality: []float64{1, 1, 1, 1},
			Event:       []float64{0, 0, 0, 0},
			Seasonal: map[string][]float64{
				"weekly": {1, 1, 1, 1},
			},
		},
	}
}

func TestTitles(t *testing.T) {
	testData := map[string]struct {
		metric     dataset.Metric
		choropleth string
		bar        string
		pie        string
		series     string
	}{
		"confirmed": {
			metric:     dataset.Confirmed,
			choropleth: "Choropleth Map for the total number of Confirmed Covid-19 Cases around the world",
			bar:        "Confirmed Cases of top 5 countries",
			pie:        "Percentage of Total Confirmed Cases in 10 most affect countries",
			series:     "Time Series Graph for Confirmed Cases",
		},
		"deaths": {
			metric:     dataset.Deaths,
			choropleth: "Choropleth Map for the total number of Death Covid-19 Cases around the world",
			bar:        "Death Cases of top 5 countries",
			pie:        "Percentage of Total Death Cases in 10 most affect countries",
			series:     "Time Series Graph for Deaths Cases",
		},
		"recovered": {
			metric:     dataset.Recovered,
			choropleth: "Choropleth Map for the total number of Recovered Covid-19 Cases around the world",
			bar:        "Recovered Cases of top 5 countries",
			pie:        "Percentage of Total Recovered Cases in 10 most affect countries",
			series:     "Time Series Graph for Recovered Cases",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.choropleth, choroplethTitle(td.metric))
			assert.Equal(t, td.bar, topBarTitle(td.metric))
			assert.Equal(t, td.pie, topPieTitle(td.metric))
			assert.Equal(t, td.series, seriesTitle(td.metric))
		})
	}
}

func TestWorldName(t *testing.T) {
	assert.Equal(t, "United States", WorldName("US"))
	assert.Equal(t, "Korea", WorldName("Korea, South"))
	assert.Equal(t, "Italy", WorldName("Italy"))
}

func TestMapFrames(t *testing.T) {
	frames := mapFrames(loadTest(t), dataset.Confirmed)
	require.Len(t, frames, 3)

	assert.Equal(t, "2020-01-22", frames[0].Label)
	assert.Equal(t,
		[]opts.MapData{
			{Name: "Italy", Value: 10.0},
			{Name: "Spain", Value: 5.0},
			{Name: "United States", Value: 20.0},
		},
		frames[0].Data,
	)
	assert.Equal(t, "2020-01-24", frames[2].Label)
	assert.Len(t, frames[2].Data, 3)
}

func TestBarFrames(t *testing.T) {
	frames := barFrames(loadTest(t), dataset.Recovered, []string{"US", "France"})
	require.Len(t, frames, 3)

	assert.Equal(t,
		[]opts.BarData{
			{Name: "US", Value: 1.0},
			{Name: "France", Value: emptyValue},
		},
		frames[0].Data,
	)
	assert.Equal(t,
		[]opts.BarData{
			{Name: "US", Value: emptyValue},
			{Name: "France", Value: 4.0},
		},
		frames[2].Data,
	)
}

func TestPlayFrames(t *testing.T) {
	script, err := playFrames([]frame{{Label: "2020-01-22", Data: []int{1}}}, BarFrameInterval)
	require.NoError(t, err)
	assert.Contains(t, script, "%MY_ECHARTS%")
	assert.Contains(t, script, `[{"label":"2020-01-22","data":[1]}]`)
	assert.Contains(t, script, "}, 500);")
}

func TestChoropleth(t *testing.T) {
	mc, err := Choropleth(loadTest(t), dataset.Deaths)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, mc.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, choroplethTitle(dataset.Deaths))
	assert.Contains(t, out, ColorScales[dataset.Deaths][0])
	assert.Contains(t, out, "setOption")
	assert.Contains(t, out, "}, 100);")

	_, err = Choropleth(dataset.New(nil), dataset.Deaths)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTopBar(t *testing.T) {
	ds := loadTest(t)
	bar, err := TopBar(ds, dataset.Confirmed)
	require.NoError(t, err)

	require.Len(t, bar.YAxisList, 1)
	assert.Equal(t, 45.0+BarHeadroom, bar.YAxisList[0].Max)
	assert.Equal(t, 0, bar.YAxisList[0].Min)

	var buf bytes.Buffer
	require.NoError(t, bar.Render(&buf))
	assert.Contains(t, buf.String(), topBarTitle(dataset.Confirmed))

	_, err = TopBar(dataset.New(nil), dataset.Confirmed)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTopPie(t *testing.T) {
	pie, err := TopPie(loadTest(t), dataset.Deaths)
	require.NoError(t, err)
	require.Len(t, pie.MultiSeries, 1)

	// US 9, Italy 6, France 5, Spain 1
	assert.Equal(t,
		[]opts.PieData{
			{Name: "US", Value: 9.0},
			{Name: "Italy", Value: 6.0},
			{Name: "France", Value: 5.0},
			{Name: "Spain", Value: 1.0},
		},
		pie.MultiSeries[0].Data,
	)
}

func TestLineTSeries(t *testing.T) {
	testData := map[string]struct {
		names []string
		t     []time.Time
		y     [][]float64
		err   error
	}{
		"valid": {
			names: []string{"a", "b"},
			t:     []time.Time{day(0), day(1)},
			y:     [][]float64{{1, 2}, {3, 4}},
		},
		"name mismatch": {
			names: []string{"a"},
			t:     []time.Time{day(0), day(1)},
			y:     [][]float64{{1, 2}, {3, 4}},
			err:   ErrLengthMismatch,
		},
		"value mismatch": {
			names: []string{"a"},
			t:     []time.Time{day(0), day(1)},
			y:     [][]float64{{1}},
			err:   ErrLengthMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			line, err := LineTSeries("title", td.names, td.t, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, line.MultiSeries, len(td.names))
		})
	}
}

func TestForecastLine(t *testing.T) {
	line, err := ForecastLine(dataset.Deaths,
		[]time.Time{day(0), day(1)}, []float64{11, 14},
		testResults(),
	)
	require.NoError(t, err)
	require.Len(t, line.MultiSeries, 4)
	assert.Equal(t, "Death cases", line.YAxisList[0].Name)
	assert.Equal(t, "Time", line.XAxisList[0].Name)

	actual := line.MultiSeries[3].Data.([]opts.LineData)
	require.Len(t, actual, 4)
	assert.Equal(t, 11.0, actual[0].Value)
	assert.Equal(t, emptyValue, actual[3].Value)

	band := line.MultiSeries[1].Data.([]opts.LineData)
	assert.Equal(t, 6.0, band[3].Value)

	var buf bytes.Buffer
	require.NoError(t, line.Render(&buf))
	assert.Contains(t, buf.String(), forecastTitle)

	_, err = ForecastLine(dataset.Deaths, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestForecastPage(t *testing.T) {
	page, err := ForecastPage("US", []Forecast{
		{
			Metric:  dataset.Confirmed,
			T:       []time.Time{day(0), day(1)},
			Y:       []float64{11, 14},
			Results: testResults(),
		},
	})
	require.NoError(t, err)
	assert.Len(t, page.Charts, 3)

	_, err = ForecastPage("US", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOverviewPage(t *testing.T) {
	ds := loadTest(t)
	page, err := OverviewPage(ds, ds.Filter(day(1), day(2)))
	require.NoError(t, err)
	assert.Len(t, page.Charts, 9)

	// a window past the last date has no records
	page, err = OverviewPage(ds, ds.Filter(day(30), day(40)))
	require.NoError(t, err)
	assert.Len(t, page.Charts, 9)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, NoDataSubtitle)
	for _, m := range barOrder {
		assert.Contains(t, out, topBarTitle(m))
	}
}

func TestEmptyBar(t *testing.T) {
	bar := EmptyBar(dataset.Deaths)

	var buf bytes.Buffer
	require.NoError(t, bar.Render(&buf))
	assert.Contains(t, buf.String(), topBarTitle(dataset.Deaths))
	assert.Contains(t, buf.String(), NoDataSubtitle)
}

func TestComponentsPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ComponentsPNG(&buf, testResults()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.ErrorIs(t, ComponentsPNG(&buf, nil), ErrNoData)
}
