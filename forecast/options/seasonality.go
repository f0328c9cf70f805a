package options

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-covidcast/feature"
)

var ErrNonPositivePeriod = errors.New("non-positive seasonality period")

// DefaultMinCycles is the number of full periods the history must cover before an
// automatic seasonality is modelled
const DefaultMinCycles = 2.0

// SeasonalityOptions configures the number of seasonality components to fit for. With Auto
// set, a configuration only stays active when the training span covers MinCycles periods.
type SeasonalityOptions struct {
	SeasonalityConfigs []SeasonalityConfig `json:"seasonality_configs"`
	Auto               bool                `json:"auto"`
	MinCycles          float64             `json:"min_cycles"`
}

// NewDefaultSeasonalityOptions models weekly and yearly cycles of a daily series
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{
		SeasonalityConfigs: []SeasonalityConfig{
			NewWeeklySeasonalityConfig(3),
			NewYearlySeasonalityConfig(10),
		},
		Auto:      true,
		MinCycles: DefaultMinCycles,
	}
}

// Resolve returns the configurations active for a training span. Invalid and duplicate
// period configurations are dropped keeping the one with the most orders. The result is
// no longer automatic so it produces the same features at prediction time.
func (s SeasonalityOptions) Resolve(span time.Duration) SeasonalityOptions {
	cfgs := slices.Clone(s.SeasonalityConfigs)
	slices.SortFunc(cfgs, func(a, b SeasonalityConfig) int {
		if a.Period != b.Period {
			return cmp.Compare(a.Period, b.Period)
		}
		if a.Orders != b.Orders {
			return b.Orders - a.Orders
		}
		return strings.Compare(a.Name, b.Name)
	})

	minCycles := s.MinCycles
	if minCycles <= 0 {
		minCycles = DefaultMinCycles
	}

	active := make([]SeasonalityConfig, 0, len(cfgs))
	var lastPeriod time.Duration
	for _, cfg := range cfgs {
		if cfg.Valid() != nil || cfg.Period == lastPeriod {
			continue
		}
		lastPeriod = cfg.Period
		if s.Auto && float64(span) < minCycles*float64(cfg.Period) {
			continue
		}
		active = append(active, cfg)
	}
	return SeasonalityOptions{SeasonalityConfigs: active, MinCycles: minCycles}
}

// GenerateFeatures creates the sine and cosine terms of every configured seasonality
func (s SeasonalityOptions) GenerateFeatures(epoch []float64) (*feature.Set, error) {
	feat := feature.NewSet()
	for _, cfg := range s.SeasonalityConfigs {
		if err := cfg.Valid(); err != nil {
			return nil, fmt.Errorf("%q, %w", cfg.Name, err)
		}
		periodSec := cfg.Period.Seconds()
		for order := 1; order <= cfg.Orders; order++ {
			for _, comp := range []feature.FourierComp{feature.FourierCompSin, feature.FourierCompCos} {
				f := feature.NewSeasonality(cfg.Name, comp, order)
				feat.Set(f, f.Generate(epoch, order, periodSec))
			}
		}
	}
	return feat, nil
}

func (s SeasonalityOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(s.SeasonalityConfigs) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sSeasonality:%s\n", prefix, strings.Repeat(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(s.SeasonalityConfigs) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tPeriod\tOrders\t\n", prefix, strings.Repeat(indent, indentGrowth+1))
	for _, cfg := range s.SeasonalityConfigs {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t\n",
			prefix, strings.Repeat(indent, indentGrowth+1),
			cfg.Name, cfg.Period, cfg.Orders)
	}
	return tbl.Flush()
}

// SeasonalityConfig generates a Fourier series of the given period. Order k has a period
// of Period/k, e.g. a weekly config with 3 orders contains 7, 3.5 and 2.33 day cycles.
type SeasonalityConfig struct {
	Name   string        `json:"name"`
	Orders int           `json:"orders"`
	Period time.Duration `json:"period"`
}

func NewSeasonalityConfig(name string, period time.Duration, orders int) SeasonalityConfig {
	return SeasonalityConfig{
		Name:   name,
		Orders: max(orders, 0),
		Period: period,
	}
}

const weeklyPeriod = 7 * 24 * time.Hour

func NewWeeklySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasWeekly, weeklyPeriod, orders)
}

// NewYearlySeasonalityConfig uses a 365.25 day year
func NewYearlySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasYearly, 36525*24*time.Hour/100, orders)
}

func (s SeasonalityConfig) Valid() error {
	if s.Name == "" {
		return errors.New("no seasonality name")
	}
	if s.Period <= 0 {
		return ErrNonPositivePeriod
	}
	if s.Orders <= 0 {
		return errors.New("no seasonality orders")
	}
	return nil
}
