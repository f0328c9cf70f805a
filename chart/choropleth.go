package chart

import (
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Choropleth draws the world map of a metric animated by date. Each frame colours the
// countries by their value on that date.
func Choropleth(ds *dataset.Dataset, m dataset.Metric) (*charts.Map, error) {
	frames := mapFrames(ds, m)
	if len(frames) == 0 {
		return nil, ErrNoData
	}
	script, err := playFrames(frames, MapFrameInterval)
	if err != nil {
		return nil, err
	}

	mc := charts.NewMap()
	mc.RegisterMapType("world")
	mc.SetGlobalOptions(
		charts.WithInitializationOpts(
			opts.Initialization{
				Width:  "1000px",
				Height: "560px",
			},
		),
		charts.WithTitleOpts(
			opts.Title{
				Title:    choroplethTitle(m),
				Subtitle: frames[0].Label,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithVisualMapOpts(
			opts.VisualMap{
				Calculable: opts.Bool(true),
				Min:        0,
				Max:        float32(math.Max(ds.Max(m), 1)),
				InRange:    &opts.VisualMapInRange{Color: ColorScales[m]},
			},
		),
	)
	mc.AddSeries(m.String(), frames[0].Data.([]opts.MapData))
	mc.AddJSFuncs(script)
	return mc, nil
}

func mapFrames(ds *dataset.Dataset, m dataset.Metric) []frame {
	dsFrames := ds.Frames()
	frames := make([]frame, 0, len(dsFrames))
	for _, f := range dsFrames {
		countries, vals := countryValues(f.Records, m)
		data := make([]opts.MapData, 0, len(countries))
		for _, country := range countries {
			v := vals[country]
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.MapData{Name: WorldName(country), Value: v})
		}
		frames = append(frames, frame{Label: f.Date.Format(time.DateOnly), Data: data})
	}
	return frames
}
