package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Scores
		err       error
	}{
		"mismatched length": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
		"perfect fit": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
			expected:  &Scores{MSE: 0, MAE: 0, MAPE: 0, R2: 1},
		},
		"constant actual": {
			predicted: []float64{2, 2},
			actual:    []float64{2, 2},
			expected:  &Scores{MSE: 0, MAE: 0, MAPE: 0, R2: 1},
		},
		"off by one with nan and zero": {
			predicted: []float64{2, 3, 4, 1},
			actual:    []float64{1, 2, math.NaN(), 0},
			expected:  &Scores{MSE: 1, MAE: 1, MAPE: 0.75, R2: -0.5},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.expected.MSE, res.MSE, 1e-9)
			assert.InDelta(t, td.expected.MAE, res.MAE, 1e-9)
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9)
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9)
		})
	}
}

func TestScoreFuncs(t *testing.T) {
	_, err := MSE([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrResLenMismatch)

	mseVal, err := MSE([]float64{0, 0}, []float64{2, 4})
	require.NoError(t, err)
	assert.Equal(t, 10.0, mseVal)

	mapeVal, err := MAPE([]float64{1, 3}, []float64{2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.375, mapeVal, 1e-9)

	r2, err := RSquared([]float64{math.NaN()}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r2)
}
