package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

// Seasonality is one sine or cosine term of a named Fourier series
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

func (s Seasonality) Decode() map[string]string {
	return map[string]string{
		"name":              s.Name,
		"fourier_component": string(s.FourierComp),
		"order":             strconv.Itoa(s.Order),
	}
}

// Generate evaluates the Fourier term over epoch seconds for a period in seconds
func (s Seasonality) Generate(epoch []float64, order int, periodSec float64) []float64 {
	omega := 2.0 * math.Pi * float64(order) / periodSec
	out := make([]float64, len(epoch))
	for i, e := range epoch {
		rad := omega * e
		if s.FourierComp == FourierCompSin {
			out[i] = math.Sin(rad)
			continue
		}
		out[i] = math.Cos(rad)
	}
	return out
}

// UnmarshalJSON accepts the decoded label map where order is stored as a string
func (s *Seasonality) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name        string `json:"name"`
		FourierComp string `json:"fourier_component"`
		Order       string `json:"order"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	order, err := strconv.Atoi(labelStr.Order)
	if err != nil {
		return fmt.Errorf("invalid seasonality order %q, %w", labelStr.Order, err)
	}
	s.Name = labelStr.Name
	s.FourierComp = FourierComp(labelStr.FourierComp)
	s.Order = order
	return nil
}
