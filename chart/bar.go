package chart

import (
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// NoDataSubtitle labels a chart of an empty window
const NoDataSubtitle = "No records in the selected window"

// TopBar races the daily values of the countries with the largest summed metric over
// the dataset. The y axis is fixed to the largest daily value plus headroom.
func TopBar(ds *dataset.Dataset, m dataset.Metric) (*charts.Bar, error) {
	top := ds.TopN(m, TopBarCount)
	if len(top) == 0 {
		return nil, ErrNoData
	}
	countries := make([]string, len(top))
	for i, tot := range top {
		countries[i] = tot.Country
	}

	sub := ds.Subset(countries)
	frames := barFrames(sub, m, countries)
	script, err := playFrames(frames, BarFrameInterval)
	if err != nil {
		return nil, err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    topBarTitle(m),
				Subtitle: frames[0].Label,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Country"}),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: m.String(),
				Min:  0,
				Max:  sub.Max(m) + BarHeadroom,
			},
		),
	)
	bar.SetXAxis(countries).
		AddSeries(m.String(), frames[0].Data.([]opts.BarData))
	bar.AddJSFuncs(script)
	return bar, nil
}

// barFrames lists, for every date, the value of each country in the order given.
// Countries without a row on a date have an empty bar.
func barFrames(ds *dataset.Dataset, m dataset.Metric, countries []string) []frame {
	dsFrames := ds.Frames()
	frames := make([]frame, 0, len(dsFrames))
	for _, f := range dsFrames {
		_, totals := countryValues(f.Records, m)
		data := make([]opts.BarData, len(countries))
		for i, country := range countries {
			data[i] = opts.BarData{Name: country, Value: emptyValue}
			if v, exists := totals[country]; exists {
				data[i].Value = valueOrEmpty(v)
			}
		}
		frames = append(frames, frame{Label: f.Date.Format(time.DateOnly), Data: data})
	}
	return frames
}

// EmptyBar is the top country bar chart of a window without any records
func EmptyBar(m dataset.Metric) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    topBarTitle(m),
				Subtitle: NoDataSubtitle,
			},
		),
		charts.WithXAxisOpts(opts.XAxis{Name: "Country"}),
		charts.WithYAxisOpts(opts.YAxis{Name: m.String(), Min: 0}),
	)
	bar.SetXAxis([]string{}).
		AddSeries(m.String(), []opts.BarData{})
	return bar
}
