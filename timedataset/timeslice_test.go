package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice        TimeSlice
		expectedStart time.Time
		expectedEnd   time.Time
		expectedSpan  time.Duration
	}{
		"nil input": {},
		"three days": {
			tSlice:        TimeSlice{day(0), day(1), day(2)},
			expectedStart: day(0),
			expectedEnd:   day(2),
			expectedSpan:  48 * time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expectedStart, td.tSlice.StartTime())
			assert.Equal(t, td.expectedEnd, td.tSlice.EndTime())
			assert.Equal(t, td.expectedSpan, td.tSlice.Span())
		})
	}
}

func TestEstimateFreq(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Duration
		err      error
	}{
		"estimate with nil slice": {
			err: ErrCannotInferFreq,
		},
		"consistent frequencies": {
			tSlice:   TimeSlice{day(0), day(1), day(2)},
			expected: 24 * time.Hour,
		},
		"missing day": {
			tSlice:   TimeSlice{day(0), day(1), day(2), day(4)},
			expected: 24 * time.Hour,
		},
		"tied counts prefer smaller spacing": {
			tSlice:   TimeSlice{day(0), day(2), day(4), day(5), day(6)},
			expected: 24 * time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			freq, err := td.tSlice.EstimateFreq()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, freq)
		})
	}
}
