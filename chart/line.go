package chart

import (
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value
// combination. Each series in y must have the same length as t, NaN values are left as
// gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) (*charts.Line, error) {
	if len(seriesName) != len(y) {
		return nil, ErrLengthMismatch
	}
	for _, vals := range y {
		if len(vals) != len(t) {
			return nil, ErrLengthMismatch
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	line = line.SetXAxis(dateLabels(t))
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData(y[i]),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}
	return line, nil
}

// SeriesLine plots the daily history of one metric
func SeriesLine(m dataset.Metric, t []time.Time, y []float64) (*charts.Line, error) {
	if len(t) == 0 {
		return nil, ErrNoData
	}
	return LineTSeries(seriesTitle(m), []string{m.String()}, t, [][]float64{y})
}

// ForecastLine generates an echart line chart of a forecast over its history. The
// actual values are drawn as points, the forecast as a line and the interval between
// the lower and upper bound as a shaded band.
func ForecastLine(m dataset.Metric, t []time.Time, y []float64, res *forecaster.Results) (*charts.Line, error) {
	if res == nil || len(res.T) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, ErrLengthMismatch
	}

	actual := make(map[time.Time]float64, len(t))
	for i, ts := range t {
		actual[ts] = y[i]
	}

	lineDataActual := make([]opts.LineData, 0, len(res.T))
	lineDataForecast := make([]opts.LineData, 0, len(res.T))
	lineDataLower := make([]opts.LineData, 0, len(res.T))
	lineDataBand := make([]opts.LineData, 0, len(res.T))
	for i, ts := range res.T {
		act := interface{}(emptyValue)
		if v, exists := actual[ts]; exists {
			act = valueOrEmpty(v)
		}
		lineDataActual = append(lineDataActual, opts.LineData{Value: act})
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: valueOrEmpty(res.Forecast[i])})
		lineDataLower = append(lineDataLower, opts.LineData{Value: valueOrEmpty(res.Lower[i])})
		lineDataBand = append(lineDataBand, opts.LineData{Value: valueOrEmpty(res.Upper[i] - res.Lower[i])})
	}

	hidden := charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)})
	noSymbol := opts.LineChart{ShowSymbol: opts.Bool(false), Stack: "interval"}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: forecastTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Data: []string{"Actual", "Forecast"}}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: m.Noun() + " cases"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(dateLabels(res.T)).
		AddSeries("Lower", lineDataLower,
			charts.WithLineChartOpts(noSymbol),
			hidden,
		).
		AddSeries("Interval", lineDataBand,
			charts.WithLineChartOpts(noSymbol),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: "#0072B2", Opacity: opts.Float(0.2)}),
			hidden,
		).
		AddSeries("Forecast", lineDataForecast,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#0072B2", Width: 2}),
		).
		AddSeries("Actual", lineDataActual,
			charts.WithLineChartOpts(opts.LineChart{Symbol: "circle", SymbolSize: 3}),
			charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}),
		)
	return line, nil
}

// ComponentsLine plots the trend and every named seasonality of a forecast
func ComponentsLine(res *forecaster.Results) (*charts.Line, error) {
	if res == nil || len(res.T) == 0 {
		return nil, ErrNoData
	}
	comp := res.SeriesComponents
	names := []string{"Trend"}
	y := [][]float64{padded(comp.Trend, len(res.T))}
	for _, name := range comp.SeasonalNames() {
		names = append(names, name)
		y = append(y, padded(comp.Seasonal[name], len(res.T)))
	}
	return LineTSeries("Forecast Components", names, res.T, y)
}

func dateLabels(t []time.Time) []string {
	labels := make([]string, len(t))
	for i, ts := range t {
		labels[i] = ts.Format(time.DateOnly)
	}
	return labels
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		data[i] = opts.LineData{Value: valueOrEmpty(v)}
	}
	return data
}

// padded returns v or zeros when the component was not produced
func padded(v []float64, n int) []float64 {
	if len(v) == n {
		return v
	}
	return make([]float64, n)
}
