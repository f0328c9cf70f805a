package forecaster

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-covidcast/forecast"
)

// Column names of a forecast table
const (
	ColDS            = "ds"
	ColYHat          = "yhat"
	ColYHatLower     = "yhat_lower"
	ColYHatUpper     = "yhat_upper"
	ColTrend         = "trend"
	ColAdditiveTerms = "additive_terms"
	ColEvent         = "event"
)

// Results holds the predictions for a set of times. Upper and Lower bound the forecast by
// the predicted residual deviation.
type Results struct {
	T                  []time.Time         `json:"time"`
	Forecast           []float64           `json:"forecast"`
	Upper              []float64           `json:"upper"`
	Lower              []float64           `json:"lower"`
	SeriesComponents   forecast.Components `json:"series_components"`
	ResidualComponents forecast.Components `json:"residual_components"`
}

// Row is one time point of the forecast table
type Row struct {
	DS            time.Time          `json:"ds"`
	YHat          float64            `json:"yhat"`
	YHatLower     float64            `json:"yhat_lower"`
	YHatUpper     float64            `json:"yhat_upper"`
	Trend         float64            `json:"trend"`
	AdditiveTerms float64            `json:"additive_terms"`
	Seasonal      map[string]float64 `json:"seasonal,omitempty"`
	Event         float64            `json:"event"`
}

// Value looks up a numeric column by name. Named seasonalities are columns of their own.
func (r Row) Value(col string) (float64, bool) {
	switch col {
	case ColYHat:
		return r.YHat, true
	case ColYHatLower:
		return r.YHatLower, true
	case ColYHatUpper:
		return r.YHatUpper, true
	case ColTrend:
		return r.Trend, true
	case ColAdditiveTerms:
		return r.AdditiveTerms, true
	case ColEvent:
		return r.Event, true
	}
	v, ok := r.Seasonal[col]
	return v, ok
}

// Columns lists the table columns in display order
func (r *Results) Columns() []string {
	cols := []string{ColDS, ColYHat, ColYHatLower, ColYHatUpper, ColTrend, ColAdditiveTerms}
	if r == nil {
		return append(cols, ColEvent)
	}
	cols = append(cols, r.SeriesComponents.SeasonalNames()...)
	return append(cols, ColEvent)
}

// Rows flattens the results into one row per time point. Event is the sum of the events
// and holidays. Additive terms are seasonality plus events.
func (r *Results) Rows() []Row {
	if r == nil {
		return nil
	}
	comp := r.SeriesComponents
	names := comp.SeasonalNames()

	rows := make([]Row, len(r.T))
	for i, t := range r.T {
		row := Row{
			DS:        t,
			YHat:      r.Forecast[i],
			YHatLower: r.Lower[i],
			YHatUpper: r.Upper[i],
			Trend:     at(comp.Trend, i),
			Event:     at(comp.Event, i),
		}
		row.AdditiveTerms = at(comp.Seasonality, i) + row.Event
		if len(names) > 0 {
			row.Seasonal = make(map[string]float64, len(names))
			for _, name := range names {
				row.Seasonal[name] = at(comp.Seasonal[name], i)
			}
		}
		rows[i] = row
	}
	return rows
}

// TablePrint writes the forecast table with one row per time point
func (r *Results) TablePrint(w io.Writer) error {
	cols := r.Columns()
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s\t\n", strings.Join(cols, "\t")); err != nil {
		return err
	}
	for _, row := range r.Rows() {
		vals := make([]string, len(cols))
		vals[0] = row.DS.Format(time.DateOnly)
		for i, col := range cols[1:] {
			v, _ := row.Value(col)
			vals[i+1] = fmt.Sprintf("%.3f", v)
		}
		if _, err := fmt.Fprintf(tbl, "%s\t\n", strings.Join(vals, "\t")); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Slice returns the results between index start and end
func (r *Results) Slice(start, end int) *Results {
	if r == nil {
		return nil
	}
	start = max(0, min(start, len(r.T)))
	end = max(start, min(end, len(r.T)))

	return &Results{
		T:                  r.T[start:end],
		Forecast:           r.Forecast[start:end],
		Upper:              r.Upper[start:end],
		Lower:              r.Lower[start:end],
		SeriesComponents:   sliceComponents(r.SeriesComponents, start, end),
		ResidualComponents: sliceComponents(r.ResidualComponents, start, end),
	}
}

func sliceComponents(c forecast.Components, start, end int) forecast.Components {
	out := forecast.Components{
		Trend:       sliceOrNil(c.Trend, start, end),
		Seasonality: sliceOrNil(c.Seasonality, start, end),
		Event:       sliceOrNil(c.Event, start, end),
	}
	if c.Seasonal != nil {
		out.Seasonal = make(map[string][]float64, len(c.Seasonal))
		for name, vals := range c.Seasonal {
			out.Seasonal[name] = sliceOrNil(vals, start, end)
		}
	}
	return out
}

func sliceOrNil(v []float64, start, end int) []float64 {
	if len(v) < end {
		return nil
	}
	return v[start:end]
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
