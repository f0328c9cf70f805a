package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-covidcast/forecast"
)

// Model is the serializeable form of a fit Forecaster
type Model struct {
	Options  *Options       `json:"options"`
	Series   forecast.Model `json:"series_model"`
	Residual forecast.Model `json:"residual_model"`
}

// TablePrint writes the forecaster options followed by the series and residual models
func (m Model) TablePrint(w io.Writer) error {
	if err := m.Options.TablePrint(w, "", "  "); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Series Model:"); err != nil {
		return err
	}
	if err := m.Series.TablePrint(w, "  ", "  "); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Residual Model:"); err != nil {
		return err
	}
	return m.Residual.TablePrint(w, "  ", "  ")
}
