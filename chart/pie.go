package chart

import (
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// TopPie slices the summed metric of the most affected countries
func TopPie(ds *dataset.Dataset, m dataset.Metric) (*charts.Pie, error) {
	top := ds.TopN(m, TopPieCount)
	if len(top) == 0 {
		return nil, ErrNoData
	}

	data := make([]opts.PieData, 0, len(top))
	for _, tot := range top {
		data = append(data, opts.PieData{Name: tot.Country, Value: tot.Value})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: topPieTitle(m)}),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:      opts.Bool(true),
				Trigger:   "item",
				Formatter: "{b}: {c} ({d}%)",
			},
		),
		charts.WithLegendOpts(
			opts.Legend{
				Show:   opts.Bool(true),
				Type:   "scroll",
				Orient: "vertical",
				Right:  "0",
				Top:    "60",
			},
		),
	)
	pie.AddSeries(m.String(), data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"30%", "65%"}}),
	)
	return pie, nil
}
