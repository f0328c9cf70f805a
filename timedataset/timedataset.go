// Package timedataset holds validated univariate daily series used to fit and evaluate forecasts.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time data")
	ErrNonPositiveFreq    = errors.New("frequency must be positive")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length and time must be strictly increasing.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
// The inputs are copied so the caller may reuse them.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	td := &TimeDataset{
		T: make([]time.Time, len(t)),
		Y: make([]float64, len(y)),
	}
	copy(td.T, t)
	copy(td.Y, y)
	return td, nil
}

// Copy returns a deep copy of the dataset
func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	cp := &TimeDataset{
		T: make([]time.Time, len(td.T)),
		Y: make([]float64, len(td.Y)),
	}
	copy(cp.T, td.T)
	copy(cp.Y, td.Y)
	return cp
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.T)
}

// Extend returns the input times followed by periods additional points spaced freq apart
// after the last time. This mirrors a future frame which includes the full history.
func Extend(t []time.Time, periods int, freq time.Duration) ([]time.Time, error) {
	if len(t) == 0 {
		return nil, ErrNoTrainingData
	}
	if freq <= 0 {
		return nil, ErrNonPositiveFreq
	}
	if periods < 0 {
		periods = 0
	}

	out := make([]time.Time, 0, len(t)+periods)
	out = append(out, t...)
	last := t[len(t)-1]
	for i := 1; i <= periods; i++ {
		out = append(out, last.Add(time.Duration(i)*freq))
	}
	return out, nil
}
