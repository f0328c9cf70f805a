package options

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
)

var (
	DefaultAutoNumChangepoints = 25
	DefaultChangepointRange    = 0.8
)

// Changepoint describes a point in time that will change the ongoing trend
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the changepoint fit to either use explicit changepoints or
// place N changepoints over the first Range fraction of the history. Each changepoint can
// contribute a jump (bias) and a change in slope (growth). With only growth enabled the
// trend stays continuous.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	EnableBias          bool          `json:"enable_bias"`
	EnableGrowth        bool          `json:"enable_growth"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	Range               float64       `json:"range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		EnableGrowth:        true,
		Auto:                true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		Range:               DefaultChangepointRange,
	}
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, strings.Repeat(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(c.Changepoints) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sName\tDate\t\n", prefix, strings.Repeat(indent, indentGrowth+1)); err != nil {
		return err
	}
	for _, chpt := range c.Changepoints {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, strings.Repeat(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// GenerateAutoChangepoints places changepoints at evenly spaced indices of the first Range
// fraction of t, never at the first point. The generated changepoints replace any existing
// ones. Nothing is generated when Auto is disabled.
func (c *ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if !c.Auto {
		return nil
	}

	if c.AutoNumChangepoints <= 0 {
		c.AutoNumChangepoints = DefaultAutoNumChangepoints
	}
	if c.Range <= 0 || c.Range > 1 {
		c.Range = DefaultChangepointRange
	}

	histSize := int(math.Floor(float64(len(t)) * c.Range))
	n := min(c.AutoNumChangepoints, histSize-1)
	if n <= 0 {
		c.Changepoints = nil
		return nil
	}

	chpts := make([]Changepoint, 0, n)
	lastIdx := 0
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		if idx <= lastIdx {
			continue
		}
		lastIdx = idx
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(i-1), t[idx]))
	}

	c.Changepoints = chpts
	return chpts
}

// GenerateFeatures produces the bias and growth features for every changepoint strictly
// before the training end time. Growth is normalized to 1 at the training end.
func (c ChangepointOptions) GenerateFeatures(t []time.Time, trainingEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	if !c.EnableBias && !c.EnableGrowth {
		return feat
	}

	for i, chpt := range c.Changepoints {
		// changepoints at or after the training end cannot be learned
		if !chpt.T.Before(trainingEndTime) {
			continue
		}

		chpntName := strconv.Itoa(i)
		if chpt.Name != "" {
			chpntName = chpt.Name
		}

		bias := make([]float64, len(t))
		growth := make([]float64, len(t))
		delta := trainingEndTime.Sub(chpt.T).Seconds()
		for j, tPnt := range t {
			if tPnt.Before(chpt.T) {
				continue
			}
			bias[j] = 1.0
			growth[j] = tPnt.Sub(chpt.T).Seconds() / delta
		}

		if c.EnableBias {
			feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompBias), bias)
		}
		if c.EnableGrowth {
			feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompSlope), growth)
		}
	}
	return feat
}
