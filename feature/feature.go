// Package feature defines the typed regressors of the additive model and the set that
// turns them into a design matrix.
package feature

import "errors"

var ErrUnknownFeatureType = errors.New("unknown feature type")

// FeatureType names the family a feature belongs to. Components of a prediction are
// grouped by this type.
type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeTime        FeatureType = "time"
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeEvent       FeatureType = "event"
)

// Feature is a uniquely labelled regressor
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// New returns an empty feature of the given type, ready to be unmarshalled into
func New(ft FeatureType) (Feature, error) {
	switch ft {
	case FeatureTypeChangepoint:
		return new(Changepoint), nil
	case FeatureTypeSeasonality:
		return new(Seasonality), nil
	case FeatureTypeTime:
		return new(Time), nil
	case FeatureTypeGrowth:
		return new(Growth), nil
	case FeatureTypeEvent:
		return new(Event), nil
	}
	return nil, ErrUnknownFeatureType
}
