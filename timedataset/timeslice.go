package timedataset

import (
	"math"
	"time"
)

// TimeSlice is a sorted slice of time points
type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	if len(t) < 1 {
		return time.Time{}
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	if len(t) < 1 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// Span returns the duration between the first and last time point
func (t TimeSlice) Span() time.Duration {
	return t.EndTime().Sub(t.StartTime())
}

// EstimateFreq returns the most common spacing between adjacent points. Ties resolve to the
// smaller spacing.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		frequencies[t[i].Sub(t[i-1])] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)
	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}
