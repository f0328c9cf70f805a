// Package dataset holds the per country daily case counts and the window, ranking and
// series operations the dashboard is built from.
package dataset

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"time"
)

var (
	ErrEmptyDataset     = errors.New("empty dataset")
	ErrInvalidStartDate = errors.New("Invalid Start Date")
	ErrInvalidEndDate   = errors.New("Invalid End Date")
	ErrUnknownCountry   = errors.New("unknown country")
)

// Record is one row of the dataset
type Record struct {
	Date      time.Time `json:"date"`
	Country   string    `json:"country"`
	Confirmed float64   `json:"confirmed"`
	Deaths    float64   `json:"deaths"`
	Recovered float64   `json:"recovered"`
}

// Value returns the count of a metric
func (r Record) Value(m Metric) float64 {
	switch m {
	case Deaths:
		return r.Deaths
	case Recovered:
		return r.Recovered
	}
	return r.Confirmed
}

func (r *Record) set(m Metric, v float64) {
	switch m {
	case Confirmed:
		r.Confirmed = v
	case Deaths:
		r.Deaths = v
	case Recovered:
		r.Recovered = v
	}
}

// Dataset is an immutable list of records kept in load order
type Dataset struct {
	records []Record
}

// New creates a dataset from records. Dates are truncated to the calendar day.
func New(records []Record) *Dataset {
	recs := make([]Record, len(records))
	for i, r := range records {
		r.Date = Day(r.Date)
		recs[i] = r
	}
	return &Dataset{records: recs}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the rows
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Bounds returns the first and last date of the dataset
func (d *Dataset) Bounds() (time.Time, time.Time, error) {
	if d.Len() == 0 {
		return time.Time{}, time.Time{}, ErrEmptyDataset
	}
	start, end := d.records[0].Date, d.records[0].Date
	for _, r := range d.records[1:] {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
	}
	return start, end, nil
}

// Window filters the dataset to start <= date <= end. A start before the first date is
// reported with ErrInvalidStartDate, otherwise an end after the last date with
// ErrInvalidEndDate. The filtered dataset is always returned.
func (d *Dataset) Window(start, end time.Time) (*Dataset, error) {
	filtered := d.Filter(start, end)

	minDate, maxDate, err := d.Bounds()
	if err != nil {
		return filtered, nil
	}
	switch {
	case Day(start).Before(minDate):
		return filtered, ErrInvalidStartDate
	case Day(end).After(maxDate):
		return filtered, ErrInvalidEndDate
	}
	return filtered, nil
}

// Filter keeps the rows within the inclusive date range. An inverted range is empty.
func (d *Dataset) Filter(start, end time.Time) *Dataset {
	start, end = Day(start), Day(end)
	out := &Dataset{}
	for _, r := range d.recordsOrNil() {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out.records = append(out.records, r)
	}
	return out
}

// Subset keeps the rows of the given countries
func (d *Dataset) Subset(countries []string) *Dataset {
	keep := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		keep[c] = struct{}{}
	}
	out := &Dataset{}
	for _, r := range d.recordsOrNil() {
		if _, exists := keep[r.Country]; exists {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Countries lists the unique countries in order of first appearance
func (d *Dataset) Countries() []string {
	seen := make(map[string]struct{})
	var countries []string
	for _, r := range d.recordsOrNil() {
		if _, exists := seen[r.Country]; exists {
			continue
		}
		seen[r.Country] = struct{}{}
		countries = append(countries, r.Country)
	}
	return countries
}

func (d *Dataset) HasCountry(country string) bool {
	for _, r := range d.recordsOrNil() {
		if r.Country == country {
			return true
		}
	}
	return false
}

// Dates lists the unique dates in ascending order
func (d *Dataset) Dates() []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, r := range d.recordsOrNil() {
		if _, exists := seen[r.Date]; exists {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// Frame is every row of a single date
type Frame struct {
	Date    time.Time
	Records []Record
}

// Frames groups rows by date in ascending date order. Rows keep their load order inside a
// frame.
func (d *Dataset) Frames() []Frame {
	byDate := make(map[time.Time][]Record)
	for _, r := range d.recordsOrNil() {
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	frames := make([]Frame, 0, len(byDate))
	for _, date := range d.Dates() {
		frames = append(frames, Frame{Date: date, Records: byDate[date]})
	}
	return frames
}

// Series returns the daily values of a country in ascending date order. Multiple rows on
// the same date are summed skipping NaN, a date with only NaN values stays NaN.
func (d *Dataset) Series(country string, m Metric) ([]time.Time, []float64, error) {
	sums := make(map[time.Time]float64)
	for _, r := range d.recordsOrNil() {
		if r.Country != country {
			continue
		}
		v := r.Value(m)
		prev, exists := sums[r.Date]
		switch {
		case !exists:
			sums[r.Date] = v
		case math.IsNaN(prev):
			sums[r.Date] = v
		case !math.IsNaN(v):
			sums[r.Date] = prev + v
		}
	}
	if len(sums) == 0 {
		return nil, nil, ErrUnknownCountry
	}

	t := make([]time.Time, 0, len(sums))
	for date := range sums {
		t = append(t, date)
	}
	slices.SortFunc(t, func(a, b time.Time) int { return a.Compare(b) })

	y := make([]float64, len(t))
	for i, date := range t {
		y[i] = sums[date]
	}
	return t, y, nil
}

// Total is the summed metric of one country
type Total struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// Totals sums a metric per country skipping NaN, ordered by first appearance
func (d *Dataset) Totals(m Metric) []Total {
	idx := make(map[string]int)
	var totals []Total
	for _, r := range d.recordsOrNil() {
		i, exists := idx[r.Country]
		if !exists {
			i = len(totals)
			idx[r.Country] = i
			totals = append(totals, Total{Country: r.Country})
		}
		if v := r.Value(m); !math.IsNaN(v) {
			totals[i].Value += v
		}
	}
	return totals
}

// TopN ranks countries by their summed metric, largest first with ties broken by country
// name. Fewer than n countries returns all of them.
func (d *Dataset) TopN(m Metric, n int) []Total {
	if n <= 0 {
		return nil
	}
	totals := d.Totals(m)
	slices.SortStableFunc(totals, func(a, b Total) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Country, b.Country)
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Max returns the largest value of a metric skipping NaN, 0 when there is none
func (d *Dataset) Max(m Metric) float64 {
	maxVal := math.Inf(-1)
	for _, r := range d.recordsOrNil() {
		if v := r.Value(m); v > maxVal {
			maxVal = v
		}
	}
	if math.IsInf(maxVal, -1) {
		return 0
	}
	return maxVal
}

func (d *Dataset) recordsOrNil() []Record {
	if d == nil {
		return nil
	}
	return d.records
}
