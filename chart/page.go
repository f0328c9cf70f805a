package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/go-echarts/go-echarts/v2/components"
)

// mapOrder, barOrder and pieOrder are the metric orders of each overview section
var (
	mapOrder = []dataset.Metric{dataset.Confirmed, dataset.Recovered, dataset.Deaths}
	barOrder = []dataset.Metric{dataset.Deaths, dataset.Confirmed, dataset.Recovered}
	pieOrder = []dataset.Metric{dataset.Deaths, dataset.Confirmed, dataset.Recovered}
)

// OverviewPage lays out the maps and pies over the full dataset and the top country bar
// races over the filtered window. An empty window keeps its titled, empty bar charts.
func OverviewPage(full, window *dataset.Dataset) (*components.Page, error) {
	page := components.NewPage()
	page.SetPageTitle("Covid-19 Overview")
	page.SetLayout(components.PageFlexLayout)

	for _, m := range mapOrder {
		mc, err := Choropleth(full, m)
		if err != nil {
			return nil, fmt.Errorf("unable to chart %s map, %w", m, err)
		}
		page.AddCharts(mc)
	}
	for _, m := range barOrder {
		bar, err := TopBar(window, m)
		switch {
		case errors.Is(err, ErrNoData):
			page.AddCharts(EmptyBar(m))
		case err != nil:
			return nil, fmt.Errorf("unable to chart %s top countries, %w", m, err)
		default:
			page.AddCharts(bar)
		}
	}
	for _, m := range pieOrder {
		pie, err := TopPie(full, m)
		if err != nil {
			return nil, fmt.Errorf("unable to chart %s share, %w", m, err)
		}
		page.AddCharts(pie)
	}
	return page, nil
}

// Forecast is the history and prediction of one metric of a country
type Forecast struct {
	Metric  dataset.Metric
	T       []time.Time
	Y       []float64
	Results *forecaster.Results
}

// ForecastPage lays out the history, forecast and components of each metric
func ForecastPage(country string, forecasts []Forecast) (*components.Page, error) {
	if len(forecasts) == 0 {
		return nil, ErrNoData
	}

	page := components.NewPage()
	page.SetPageTitle(fmt.Sprintf("Covid-19 Forecast: %s", country))

	for _, fc := range forecasts {
		series, err := SeriesLine(fc.Metric, fc.T, fc.Y)
		if err != nil {
			return nil, fmt.Errorf("unable to chart %s series, %w", fc.Metric, err)
		}
		fit, err := ForecastLine(fc.Metric, fc.T, fc.Y, fc.Results)
		if err != nil {
			return nil, fmt.Errorf("unable to chart %s forecast, %w", fc.Metric, err)
		}
		comp, err := ComponentsLine(fc.Results)
		if err != nil {
			return nil, fmt.Errorf("unable to chart %s components, %w", fc.Metric, err)
		}
		page.AddCharts(series, fit, comp)
	}
	return page, nil
}
