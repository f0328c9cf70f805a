// Package stats contains the robust statistics used while fitting forecasts
package stats

import (
	"math"
	"sort"
)

// DetectOutliers returns the indices of y outside of the Tukey fences computed from the
// lower and upper percentiles. NaNs are never reported. A series with no spread between
// the percentiles has no outliers.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		sorted = append(sorted, v)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)

	last := len(sorted) - 1
	lowerIdx := min(int(math.Floor(float64(last)*lowerPerc)), last)
	upperIdx := min(int(math.Ceil(float64(last)*upperPerc)), last)

	lower := sorted[lowerIdx]
	upper := sorted[upperIdx]
	innerRange := upper - lower
	if innerRange <= 0 {
		return nil
	}
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if v > upper || v < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
