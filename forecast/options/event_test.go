package options

import (
	"bytes"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
	"github.com/aouyang1/go-covidcast/timedataset"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoliday(t *testing.T) {
	pst := time.FixedZone("UTC-8", -8*60*60)

	testData := map[string]struct {
		hol       *cal.Holiday
		start     time.Time
		end       time.Time
		durBefore time.Duration
		durAfter  time.Duration
		expected  []Event
	}{
		"no coverage": {
			hol:   us.ChristmasDay,
			start: time.Date(2024, 12, 8, 1, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 12, 12, 1, 0, 0, 0, time.UTC),
		},
		"across years": {
			hol:   us.ChristmasDay,
			start: time.Date(2024, 12, 8, 1, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 12, 8, 1, 0, 0, 0, time.UTC),
			expected: []Event{
				NewEvent("Christmas_Day", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)),
				NewEvent("Christmas_Day", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC)),
			},
		},
		"non utc tz": {
			hol:   us.ChristmasDay,
			start: time.Date(2024, 12, 8, 1, 0, 0, 0, pst),
			end:   time.Date(2025, 12, 8, 1, 0, 0, 0, pst),
			expected: []Event{
				NewEvent("Christmas_Day", time.Date(2024, 12, 25, 0, 0, 0, 0, pst), time.Date(2024, 12, 26, 0, 0, 0, 0, pst)),
			},
		},
		"with buffer": {
			hol:       us.ChristmasDay,
			start:     time.Date(2024, 12, 8, 1, 0, 0, 0, time.UTC),
			end:       time.Date(2025, 12, 8, 1, 0, 0, 0, time.UTC),
			durBefore: 24 * time.Hour,
			durAfter:  2 * 24 * time.Hour,
			expected: []Event{
				NewEvent("Christmas_Day", time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)),
			},
		},
		"thanksgiving": {
			hol:   us.ThanksgivingDay,
			start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
			expected: []Event{
				NewEvent("Thanksgiving_Day", time.Date(2020, 11, 26, 0, 0, 0, 0, time.UTC), time.Date(2020, 11, 27, 0, 0, 0, 0, time.UTC)),
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := Holiday(td.hol, td.start, td.end, td.durBefore, td.durAfter)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestEventValid(t *testing.T) {
	testData := map[string]struct {
		event Event
		err   error
	}{
		"valid":           {event: NewEvent("lockdown", day(0), day(3))},
		"unset start":     {event: NewEvent("lockdown", time.Time{}, day(3)), err: ErrUnsetTime},
		"start after end": {event: NewEvent("lockdown", day(4), day(3)), err: ErrStartAfterEnd},
		"no name":         {event: NewEvent("", day(0), day(3)), err: ErrNoEventName},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, td.event.Valid(), td.err)
		})
	}
}

func TestGenerateEventFeatures(t *testing.T) {
	testData := map[string]struct {
		opt      EventOptions
		t        []time.Time
		expected map[string][]float64
	}{
		"no events": {
			opt:      EventOptions{},
			t:        timedataset.GenerateDailyT(dayZero, 6),
			expected: map[string][]float64{},
		},
		"single event end exclusive": {
			opt: EventOptions{Events: []Event{NewEvent("lockdown", day(1), day(3))}},
			t:   timedataset.GenerateDailyT(dayZero, 6),
			expected: map[string][]float64{
				"lockdown": {0, 1, 1, 0, 0, 0},
			},
		},
		"spans sharing a name": {
			opt: EventOptions{Events: []Event{
				NewEvent("closure", day(1), day(2)),
				NewEvent("closure", day(4), day(5)),
			}},
			t: timedataset.GenerateDailyT(dayZero, 6),
			expected: map[string][]float64{
				"closure": {0, 1, 0, 0, 1, 0},
			},
		},
		"invalid event skipped": {
			opt:      EventOptions{Events: []Event{NewEvent("", day(1), day(2))}},
			t:        timedataset.GenerateDailyT(dayZero, 6),
			expected: map[string][]float64{},
		},
		"holiday": {
			opt: EventOptions{Holidays: []string{HolidayChristmas}},
			t:   timedataset.GenerateDailyT(time.Date(2020, 12, 20, 0, 0, 0, 0, time.UTC), 8),
			expected: map[string][]float64{
				"Christmas_Day": {0, 0, 0, 0, 0, 1, 0, 0},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.opt.GenerateFeatures(td.t, WindowRectangular)
			require.Equal(t, len(td.expected), res.Len())
			for evName, expVals := range td.expected {
				vals, exists := res.Get(feature.NewEvent(evName))
				require.True(t, exists, evName)
				assert.Equal(t, expVals, vals)
			}
		})
	}
}

func TestGenerateEventMaskWithFunc(t *testing.T) {
	tSeries := timedataset.GenerateDailyT(dayZero, 7)
	cond := func(tPnt time.Time) bool {
		return !tPnt.Before(day(1)) && tPnt.Before(day(6))
	}

	rect := generateEventMaskWithFunc(tSeries, cond, WindowFunc(WindowRectangular))
	assert.Equal(t, []float64{0, 1, 1, 1, 1, 1, 0}, rect)

	hann := generateEventMaskWithFunc(tSeries, cond, WindowFunc(WindowHann))
	assert.InDeltaSlice(t, []float64{0, 0, 0.5, 1, 0.5, 0, 0}, hann, 1e-9)

	unknown := generateEventMaskWithFunc(tSeries, cond, WindowFunc("unknown"))
	assert.Equal(t, rect, unknown)
}

func TestEventTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EventOptions{}.TablePrint(&buf, "", "  ", 0))
	assert.Equal(t, "Events: None\n", buf.String())

	buf.Reset()
	opt := EventOptions{
		Events:   []Event{NewEvent("lockdown", day(1), day(3))},
		Holidays: []string{HolidayThanksgiving},
	}
	require.NoError(t, opt.TablePrint(&buf, "", "  ", 0))
	assert.Contains(t, buf.String(), "lockdown")
	assert.Contains(t, buf.String(), "2020-01-23")
	assert.Contains(t, buf.String(), "thanksgiving")
}
