package forecaster

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-covidcast/timedataset"
)

const (
	MinYears    = 1
	MaxYears    = 10
	DaysPerYear = 365

	Daily = 24 * time.Hour
)

var ErrInvalidYears = errors.New("years of prediction must be between 1 and 10")

// Horizon converts whole years into the number of daily periods to forecast
func Horizon(years int) (int, error) {
	if years < MinYears || years > MaxYears {
		return 0, fmt.Errorf("%d, %w", years, ErrInvalidYears)
	}
	return years * DaysPerYear, nil
}

// MakeFuture returns the history t followed by periods more daily points
func MakeFuture(t []time.Time, periods int) ([]time.Time, error) {
	return timedataset.Extend(t, periods, Daily)
}

// PredictYears forecasts the history t plus years of daily points. Restored forecasters
// predict the same as the forecaster that was fit.
func (f *Forecaster) PredictYears(t []time.Time, years int) (*Results, error) {
	periods, err := Horizon(years)
	if err != nil {
		return nil, err
	}
	future, err := MakeFuture(t, periods)
	if err != nil {
		return nil, err
	}
	return f.Predict(future)
}
