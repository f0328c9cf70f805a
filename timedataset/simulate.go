package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

const secondsPerDay = 86400.0

// GenerateDailyT returns n consecutive days starting at the midnight of start in UTC
func GenerateDailyT(start time.Time, n int) []time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, day.AddDate(0, 0, i))
	}
	return t
}

// Series is a simulated value slice which can be composed in place
type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	for i := range s {
		if !t[i].Before(start) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func (s Series) MaskWithTimeRange(start, end time.Time, t []time.Time) Series {
	for i := range s {
		if t[i].Before(start) || t[i].After(end) {
			s[i] = 0.0
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make(Series, n)
	for i := range y {
		y[i] = val
	}
	return y
}

// GenerateRampY increases by perDay for every day elapsed since the first time point
func GenerateRampY(t []time.Time, perDay float64) Series {
	y := make(Series, len(t))
	if len(t) == 0 {
		return y
	}
	for i := range t {
		y[i] = perDay * t[i].Sub(t[0]).Hours() / 24.0
	}
	return y
}

// GenerateWaveY produces a sine wave with a period expressed in days
func GenerateWaveY(t []time.Time, amp, periodDays, order, phaseDays float64) Series {
	y := make(Series, len(t))
	periodSec := periodDays * secondsPerDay
	for i := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+phaseDays*secondsPerDay))
	}
	return y
}

// GenerateNoise returns gaussian noise with the provided standard deviation
func GenerateNoise(t []time.Time, scale float64) Series {
	y := make(Series, len(t))
	for i := range t {
		y[i] = rand.NormFloat64() * scale
	}
	return y
}

// GenerateChange adds a jump of bias at chpt and then grows by slope per day
func GenerateChange(t []time.Time, chpt time.Time, bias, slope float64) Series {
	y := make(Series, len(t))
	for i := range t {
		if !t[i].Before(chpt) {
			y[i] = bias + slope*t[i].Sub(chpt).Hours()/24.0
		}
	}
	return y
}
