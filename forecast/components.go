package forecast

import "slices"

// Components splits a prediction into its additive parts. Seasonal holds each named
// seasonality, e.g. weekly and yearly, which sum to Seasonality.
type Components struct {
	Trend       []float64            `json:"trend"`
	Seasonality []float64            `json:"seasonality"`
	Event       []float64            `json:"event"`
	Seasonal    map[string][]float64 `json:"seasonal,omitempty"`
}

// SeasonalNames lists the named seasonalities in sorted order
func (c Components) SeasonalNames() []string {
	names := make([]string, 0, len(c.Seasonal))
	for name := range c.Seasonal {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
