package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestNewUnivariateDataset(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		y        []float64
		expected *TimeDataset
		err      error
	}{
		"no training data": {
			err: ErrNoTrainingData,
		},
		"length mismatch": {
			t:   []time.Time{day(0), day(1)},
			y:   []float64{1},
			err: ErrDatasetLenMismatch,
		},
		"repeated day": {
			t:   []time.Time{day(0), day(0)},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"decreasing day": {
			t:   []time.Time{day(1), day(0)},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"valid": {
			t: []time.Time{day(0), day(1)},
			y: []float64{1, 2},
			expected: &TimeDataset{
				T: []time.Time{day(0), day(1)},
				Y: []float64{1, 2},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := NewUnivariateDataset(td.t, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, ds)
		})
	}
}

func TestNewUnivariateDatasetCopiesInput(t *testing.T) {
	tIn := []time.Time{day(0), day(1)}
	yIn := []float64{1, 2}
	ds, err := NewUnivariateDataset(tIn, yIn)
	require.NoError(t, err)

	yIn[0] = 100
	tIn[0] = day(5)
	assert.Equal(t, 1.0, ds.Y[0])
	assert.Equal(t, day(0), ds.T[0])

	cp := ds.Copy()
	cp.Y[1] = 50
	assert.Equal(t, 2.0, ds.Y[1])
	assert.Equal(t, 2, cp.Len())
}

func TestExtend(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		periods  int
		freq     time.Duration
		expected []time.Time
		err      error
	}{
		"empty history": {
			periods: 1,
			freq:    24 * time.Hour,
			err:     ErrNoTrainingData,
		},
		"zero frequency": {
			t:       []time.Time{day(0)},
			periods: 1,
			err:     ErrNonPositiveFreq,
		},
		"no periods keeps history": {
			t:        []time.Time{day(0), day(1)},
			freq:     24 * time.Hour,
			expected: []time.Time{day(0), day(1)},
		},
		"one year of days": {
			t:       []time.Time{day(0), day(1)},
			periods: 365,
			freq:    24 * time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Extend(td.t, td.periods, td.freq)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			if td.expected != nil {
				assert.Equal(t, td.expected, res)
				return
			}
			require.Len(t, res, len(td.t)+td.periods)
			assert.Equal(t, day(1+td.periods), res[len(res)-1])
		})
	}
}
