package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd  = errors.New("event start time is after end time")
	ErrUnsetTime      = errors.New("unset event start or end time")
	ErrNoEventName    = errors.New("no event name")
	ErrUnknownHoliday = errors.New("unknown holiday")
)

const (
	HolidayChristmas    = "christmas"
	HolidayThanksgiving = "thanksgiving"
)

var holidays = map[string]*cal.Holiday{
	HolidayChristmas:    us.ChristmasDay,
	HolidayThanksgiving: us.ThanksgivingDay,
}

// Event is a time span modelled with its own bias, e.g. a lockdown or a reporting holiday
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

func (e Event) contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// HolidayByName looks up a supported holiday, case insensitive
func HolidayByName(name string) (*cal.Holiday, error) {
	hol, ok := holidays[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownHoliday)
	}
	return hol, nil
}

func Christmas(start, end time.Time, durBefore, durAfter time.Duration) []Event {
	return Holiday(us.ChristmasDay, start, end, durBefore, durAfter)
}

func Thanksgiving(start, end time.Time, durBefore, durAfter time.Duration) []Event {
	return Holiday(us.ThanksgivingDay, start, end, durBefore, durAfter)
}

// Holiday lists the observed day of a holiday for every year between start and end. All
// years share the same event name so they are fit with one coefficient.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	name := strings.ReplaceAll(hol.Name, " ", "_")

	var events []Event
	for year := start.Year(); year <= end.Year(); year++ {
		_, observed := hol.Calc(year)
		if observed.IsZero() {
			continue
		}
		day := time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, start.Location())
		if day.Before(start) || day.After(end) {
			continue
		}
		events = append(events, Event{
			Name:  name,
			Start: day.Add(-durBefore),
			End:   day.Add(24 * time.Hour).Add(durAfter),
		})
	}
	return events
}

// EventOptions lists explicit events and named holidays to model. Holidays expand into one
// event per year covered by the time points being generated.
type EventOptions struct {
	Events           []Event       `json:"events"`
	Holidays         []string      `json:"holidays"`
	HolidayDurBefore time.Duration `json:"holiday_duration_before"`
	HolidayDurAfter  time.Duration `json:"holiday_duration_after"`
}

func (e EventOptions) expand(start, end time.Time) []Event {
	events := slices.Clone(e.Events)
	for _, name := range e.Holidays {
		hol, err := HolidayByName(name)
		if err != nil {
			slog.Warn("not modelling unknown holiday", "name", name)
			continue
		}
		events = append(events, Holiday(hol, start.Add(-e.HolidayDurAfter), end.Add(e.HolidayDurBefore), e.HolidayDurBefore, e.HolidayDurAfter)...)
	}
	return events
}

// GenerateFeatures builds a mask for each event name shaped by the named window. Spans of
// events sharing a name land in the same feature.
func (e EventOptions) GenerateFeatures(t []time.Time, window string) *feature.Set {
	feat := feature.NewSet()
	if len(t) == 0 {
		return feat
	}

	winFunc := WindowFunc(window)
	for _, ev := range e.expand(t[0], t[len(t)-1]) {
		if err := ev.Valid(); err != nil {
			slog.Warn("not separately modelling invalid event", "name", ev.Name, "error", err.Error())
			continue
		}

		mask := generateEventMaskWithFunc(t, ev.contains, winFunc)
		f := feature.NewEvent(strings.ReplaceAll(ev.Name, " ", "_"))
		if existing, exists := feat.Get(f); exists {
			for i, v := range existing {
				mask[i] = max(mask[i], v)
			}
		}
		feat.Set(f, mask)
	}
	return feat
}

func (e EventOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(e.Events) > 0 || len(e.Holidays) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, strings.Repeat(indent, indentGrowth), noCfg); err != nil {
		return err
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if len(e.Events) > 0 {
		fmt.Fprintf(tbl, "%s%sName\tStart\tEnd\t\n", prefix, strings.Repeat(indent, indentGrowth+1))
	}
	for _, ev := range e.Events {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, strings.Repeat(indent, indentGrowth+1),
			ev.Name, ev.Start.Format(time.DateOnly), ev.End.Format(time.DateOnly))
	}
	for _, name := range e.Holidays {
		fmt.Fprintf(tbl, "%s%sholiday\t%s\t\t\n", prefix, strings.Repeat(indent, indentGrowth+1), name)
	}
	return tbl.Flush()
}

// generateEventMaskWithFunc marks every point satisfying maskCond with 1 and then shapes
// each contiguous span with the window function
func generateEventMaskWithFunc(t []time.Time, maskCond func(tPnt time.Time) bool, windowFunc func(seq []float64) []float64) []float64 {
	mask := make([]float64, len(t))
	spanStart := -1
	for i, tPnt := range t {
		if maskCond(tPnt) {
			mask[i] = 1.0
			if spanStart < 0 {
				spanStart = i
			}
			continue
		}
		if spanStart >= 0 {
			windowFunc(mask[spanStart:i])
			spanStart = -1
		}
	}
	if spanStart >= 0 {
		windowFunc(mask[spanStart:])
	}
	return mask
}
