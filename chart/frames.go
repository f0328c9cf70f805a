package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/goccy/go-json"
)

// frame is one step of an animation, the data replaces the first series of the chart
type frame struct {
	Label string      `json:"label"`
	Data  interface{} `json:"data"`
}

// playFrames returns the script stepping a chart through its frames once. The date of
// the shown frame is written to the subtitle.
func playFrames(frames []frame, interval time.Duration) (string, error) {
	payload, err := json.Marshal(frames)
	if err != nil {
		return "", fmt.Errorf("unable to encode animation frames, %w", err)
	}
	return fmt.Sprintf(`(function () {
	var chart = %%MY_ECHARTS%%;
	var frames = %s;
	var i = 0;
	var timer = setInterval(function () {
		if (i >= frames.length) {
			clearInterval(timer);
			return;
		}
		chart.setOption({title: {subtext: frames[i].label}, series: [{data: frames[i].data}]});
		i++;
	}, %d);
})();`, payload, interval.Milliseconds()), nil
}

// emptyValue is the echarts marker for a missing point
const emptyValue = "-"

func valueOrEmpty(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return emptyValue
	}
	return v
}

// countryValues sums a metric per country in first appearance order. A country with
// only NaN values stays NaN.
func countryValues(records []dataset.Record, m dataset.Metric) ([]string, map[string]float64) {
	var order []string
	vals := make(map[string]float64)
	for _, r := range records {
		v := r.Value(m)
		prev, exists := vals[r.Country]
		switch {
		case !exists:
			order = append(order, r.Country)
			vals[r.Country] = v
		case math.IsNaN(prev):
			vals[r.Country] = v
		case !math.IsNaN(v):
			vals[r.Country] = prev + v
		}
	}
	return order, vals
}
