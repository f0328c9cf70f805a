package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a fitted linear model of y ~ intercept + x * coef
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// prependOnes returns x with a leading column of ones
func prependOnes(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

func validateTraining(x, y mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	return nil
}

// predict computes intercept + x * coef
func predict(x mat.Matrix, intercept float64, coef []float64) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}
	if n == 0 {
		res := make([]float64, m)
		for i := range res {
			res[i] = intercept
		}
		return res, nil
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, coef))
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = res.AtVec(i) + intercept
	}
	return out, nil
}

// score computes the coefficient of determination of a model against x and y. A constant
// target that is fit exactly scores 1.
func score(model Model, x, y mat.Matrix) (float64, error) {
	if err := validateTraining(x, y); err != nil {
		return 0.0, err
	}
	res, err := model.Predict(x)
	if err != nil {
		return 0.0, err
	}
	ySlice := mat.Col(nil, 0, y)
	r2 := stat.RSquaredFrom(res, ySlice, nil)
	if r2 != r2 {
		return 1.0, nil
	}
	return r2, nil
}
