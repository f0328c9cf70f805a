package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	GrowthIntercept = "intercept"
	GrowthLinear    = "linear"
)

// Growth is a global trend regressor, either the constant intercept or linear growth
// normalized to the training window.
type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

func Intercept() *Growth {
	return NewGrowth(GrowthIntercept)
}

func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

func (g Growth) String() string {
	return fmt.Sprintf("growth_%s", g.Name)
}

func (g Growth) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return g.Name, true
	}
	return "", false
}

func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

func (g Growth) Decode() map[string]string {
	return map[string]string{"name": g.Name}
}

// Generate computes the growth feature for the epoch seconds. Linear growth is 0 at the
// training start and 1 at the training end. Unknown growth names yield nil.
func (g Growth) Generate(epoch []float64, trainStart, trainEnd time.Time) []float64 {
	switch g.Name {
	case GrowthIntercept:
		out := make([]float64, len(epoch))
		for i := range out {
			out[i] = 1.0
		}
		return out
	case GrowthLinear:
		start := float64(trainStart.UnixNano()) / 1e9
		span := float64(trainEnd.Sub(trainStart).Nanoseconds()) / 1e9
		out := make([]float64, len(epoch))
		if span <= 0 {
			return out
		}
		for i, e := range epoch {
			out[i] = (e - start) / span
		}
		return out
	}
	return nil
}

func (g *Growth) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	g.Name = labelStr.Name
	return nil
}
