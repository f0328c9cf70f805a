package options

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/timedataset"
)

const (
	// MaxWeekendDurBuffer sets a limit of 1 day before or after the weekend begins at 00:00
	// Saturday or 00:00 Monday, respectively. Timezone is based on the weekend option
	// timezone override or the dataset timezone.
	MaxWeekendDurBuffer = 24 * time.Hour

	LabelEventWeekend = "weekend"

	// MaxWeeklyOrdersWithWeekend caps a weekly seasonality fit alongside the weekend mask.
	// Three weekly orders plus the intercept span every weekly pattern, the weekend
	// included.
	MaxWeeklyOrdersWithWeekend = 2
)

// WeekendOptions models weekends separately from weekdays, e.g. the drop in reported cases
// when fewer tests are processed on Saturday and Sunday
type WeekendOptions struct {
	Enabled          bool          `json:"enabled"`
	TimezoneOverride string        `json:"timezone_override"`
	DurBefore        time.Duration `json:"duration_before"`
	DurAfter         time.Duration `json:"duration_after"`
}

func (w *WeekendOptions) Validate() {
	w.DurBefore = min(max(w.DurBefore, -MaxWeekendDurBuffer), MaxWeekendDurBuffer)
	w.DurAfter = min(max(w.DurAfter, -MaxWeekendDurBuffer), MaxWeekendDurBuffer)
}

func (w WeekendOptions) isWeekend(tPnt time.Time) bool {
	if w.DurBefore == 0 && w.DurAfter == 0 {
		wkday := tPnt.Weekday()
		return wkday == time.Saturday || wkday == time.Sunday
	}

	wkdayBefore := tPnt.Add(w.DurBefore).Weekday()
	wkdayAfter := tPnt.Add(-w.DurAfter).Weekday()

	wkdayBeforeValid := wkdayBefore == time.Saturday || wkdayBefore == time.Sunday
	wkdayAfterValid := wkdayAfter == time.Saturday || wkdayAfter == time.Sunday

	if w.DurBefore > 0 && w.DurAfter > 0 {
		return wkdayBeforeValid || wkdayAfterValid
	}
	return wkdayBeforeValid && wkdayAfterValid
}

// GenerateFeatures builds the weekend event mask shaped by the named window. Non
// rectangular windows weigh a weekend by its full span so the series is padded by the
// window length before shaping and truncated afterwards.
func (w WeekendOptions) GenerateFeatures(t []time.Time, windowName string) *feature.Set {
	feat := feature.NewSet()
	if !w.Enabled || len(t) == 0 {
		return feat
	}

	if w.TimezoneOverride != "" {
		locOverride, err := time.LoadLocation(w.TimezoneOverride)
		if err != nil {
			slog.Warn("invalid timezone location override for weekend options, using dataset timezone", "timezone_override", w.TimezoneOverride)
		} else {
			tShift := make([]time.Time, len(t))
			for i, val := range t {
				tShift[i] = val.In(locOverride)
			}
			t = tShift
		}
	}
	w.Validate()

	startIdx, endIdx := 0, len(t)
	if windowName != "" && windowName != WindowRectangular {
		padded, start, end, err := w.pad(t)
		if err != nil {
			slog.Warn("not padding weekend mask", "error", err.Error())
		} else {
			t, startIdx, endIdx = padded, start, end
		}
	}

	mask := generateEventMaskWithFunc(t, w.isWeekend, WindowFunc(windowName))
	feat.Set(feature.NewEvent(LabelEventWeekend), mask[startIdx:endIdx])
	return feat
}

// pad extends t by a weekend plus the buffers on both sides at the estimated frequency
func (w WeekendOptions) pad(t []time.Time) ([]time.Time, int, int, error) {
	ts := timedataset.TimeSlice(t)
	freq, err := ts.EstimateFreq()
	if err != nil {
		return nil, 0, 0, err
	}
	window := 2 * 24 * time.Hour

	numBefore := int((window+w.DurBefore)/freq) + 1
	numAfter := int((window+w.DurAfter)/freq) + 1

	out := make([]time.Time, 0, numBefore+len(t)+numAfter)
	start := ts.StartTime()
	for i := range numBefore {
		out = append(out, start.Add(-time.Duration(numBefore-i)*freq))
	}
	out = append(out, t...)
	end := ts.EndTime()
	for i := range numAfter {
		out = append(out, end.Add(time.Duration(i+1)*freq))
	}
	return out, numBefore, numBefore + len(t), nil
}

func (w WeekendOptions) TablePrint(wr io.Writer, prefix, indent string, indentGrowth int) error {
	if !w.Enabled {
		_, err := fmt.Fprintf(wr, "%s%sWeekend: None\n", prefix, strings.Repeat(indent, indentGrowth))
		return err
	}
	_, err := fmt.Fprintf(wr, "%s%sWeekend: before %s, after %s, timezone %q\n",
		prefix, strings.Repeat(indent, indentGrowth), w.DurBefore, w.DurAfter, w.TimezoneOverride)
	return err
}
