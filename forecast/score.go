package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the fit scores
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAE  float64 `json:"mean_absolute_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values.
// Pairs where either side is NaN are ignored.
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := validPairs(predicted, actual)
	if err != nil {
		return nil, err
	}

	return &Scores{
		MSE:  mse(p, a),
		MAE:  mae(p, a),
		MAPE: mape(p, a),
		R2:   rSquared(p, a),
	}, nil
}

func validPairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}

// MSE computes the mean squared error where 0 is a perfect match
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := validPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mse(p, a), nil
}

// MAPE calculates the mean absolute percent error skipping zero actuals
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := validPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mape(p, a), nil
}

// RSquared computes the coefficient of determination where 1.0 means a perfect fit. A
// constant actual series scores 1.0.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := validPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return rSquared(p, a), nil
}

func mse(p, a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := a[i] - p[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

func mae(p, a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - p[i])
	}
	return sum / float64(len(a))
}

func mape(p, a []float64) float64 {
	var sum float64
	var n int
	for i := range a {
		if a[i] == 0 {
			continue
		}
		sum += math.Abs((a[i] - p[i]) / a[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func rSquared(p, a []float64) float64 {
	if len(a) == 0 {
		return 1.0
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		return 1.0
	}
	return r2
}
