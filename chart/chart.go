// Package chart renders the dashboard figures. Interactive figures are Apache Echarts
// charts built with go-echarts, the static components figure is drawn with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
)

const (
	MapFrameInterval = 100 * time.Millisecond
	BarFrameInterval = 500 * time.Millisecond

	// TopBarCount is the number of countries raced in the bar charts
	TopBarCount = 5
	// TopPieCount is the number of countries sliced in the pie charts
	TopPieCount = 10
	// BarHeadroom is added to the largest bar to set the y axis range
	BarHeadroom = 100000
)

var (
	ErrNoData         = errors.New("no data to chart")
	ErrLengthMismatch = errors.New("time and value lengths do not match")
)

// ColorScales are the continuous colour ramps of each metric's map, lowest value first
var ColorScales = map[dataset.Metric][]string{
	dataset.Confirmed: {
		"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
		"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
	},
	dataset.Recovered: {
		"#f7fcfd", "#e0ecf4", "#bfd3e6", "#9ebcda", "#8c96c6",
		"#8c6bb1", "#88419d", "#810f7c", "#4d004b",
	},
	dataset.Deaths: {
		"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f",
		"#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf",
	},
}

func choroplethTitle(m dataset.Metric) string {
	return fmt.Sprintf("Choropleth Map for the total number of %s Covid-19 Cases around the world", m.Noun())
}

func topBarTitle(m dataset.Metric) string {
	return fmt.Sprintf("%s Cases of top %d countries", m.Noun(), TopBarCount)
}

func topPieTitle(m dataset.Metric) string {
	return fmt.Sprintf("Percentage of Total %s Cases in %d most affect countries", m.Noun(), TopPieCount)
}

func seriesTitle(m dataset.Metric) string {
	return fmt.Sprintf("Time Series Graph for %s Cases", m)
}

const forecastTitle = "Forecast graph of Time Series model"
