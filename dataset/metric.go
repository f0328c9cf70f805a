package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMetric = errors.New("unknown metric")

// Metric is one of the cumulative case counts tracked per country and date
type Metric int

const (
	Confirmed Metric = iota
	Deaths
	Recovered
)

// Metrics lists every metric in display order
var Metrics = []Metric{Confirmed, Deaths, Recovered}

// String returns the CSV column name of the metric
func (m Metric) String() string {
	switch m {
	case Confirmed:
		return "Confirmed"
	case Deaths:
		return "Deaths"
	case Recovered:
		return "Recovered"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Noun is the singular form used in chart titles, e.g. "Death Cases of top 5 countries"
func (m Metric) Noun() string {
	if m == Deaths {
		return "Death"
	}
	return m.String()
}

// ParseMetric accepts a metric name in any case. "death" is accepted for Deaths.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confirmed":
		return Confirmed, nil
	case "deaths", "death":
		return Deaths, nil
	case "recovered":
		return Recovered, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownMetric)
}

func (m Metric) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
