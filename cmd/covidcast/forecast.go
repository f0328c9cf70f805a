package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aouyang1/go-covidcast/chart"
	"github.com/aouyang1/go-covidcast/dashboard"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var forecastFlags struct {
	window     windowFlags
	country    string
	metric     string
	years      int
	tail       int
	showModel  bool
	htmlPath   string
	pngDir     string
	jsonPath   string
	profileDir string
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the metrics of a country",
	Long: `Fits every metric of a country over the date window and predicts the history plus
years*365 days ahead.

Example:
  covidcast forecast --country Italy --years 2 --start 2020-02-01 --html italy.html`,
	RunE: runForecast,
}

func init() {
	f := forecastCmd.Flags()
	forecastFlags.window.register(forecastCmd)
	f.StringVar(&forecastFlags.country, "country", "", "Country to forecast (required)")
	f.StringVar(&forecastFlags.metric, "metric", "", "Only print this metric (default: all)")
	f.IntVar(&forecastFlags.years, "years", 0, "Years to forecast ahead (default: configured default)")
	f.IntVar(&forecastFlags.tail, "tail", 10, "Print only the last n rows of each forecast, 0 prints all")
	f.BoolVar(&forecastFlags.showModel, "model", false, "Print the fitted model of each metric")
	f.StringVar(&forecastFlags.htmlPath, "html", "", "Write the forecast charts to this html file")
	f.StringVar(&forecastFlags.pngDir, "png-dir", "", "Write the component plots of each metric into this directory")
	f.StringVar(&forecastFlags.jsonPath, "json", "", "Write the fitted models to this json file")
	f.StringVar(&forecastFlags.profileDir, "profile", "", "Write a cpu profile of the forecast into this directory")
	_ = forecastCmd.MarkFlagRequired("country")
}

func runForecast(cmd *cobra.Command, args []string) error {
	if forecastFlags.profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(forecastFlags.profileDir), profile.Quiet).Stop()
	}

	var only *dataset.Metric
	if forecastFlags.metric != "" {
		m, err := dataset.ParseMetric(forecastFlags.metric)
		if err != nil {
			return err
		}
		only = &m
	}
	years := forecastFlags.years
	if years == 0 {
		years = cfg.Forecast.DefaultYears
	}

	ctx := cmd.Context()
	svc, closeSvc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeSvc()

	sel, err := forecastFlags.window.selection(svc)
	if err != nil {
		return err
	}
	cf, err := svc.Forecast(ctx, sel, forecastFlags.country, years)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, mf := range cf.Metrics {
		if only != nil && mf.Metric != *only {
			continue
		}
		if err := printMetricForecast(out, cf, mf, forecastFlags.tail, forecastFlags.showModel); err != nil {
			return err
		}
	}

	if forecastFlags.htmlPath != "" {
		if err := writeForecastHTML(forecastFlags.htmlPath, cf); err != nil {
			return err
		}
	}
	if forecastFlags.pngDir != "" {
		if err := writeComponentPNGs(forecastFlags.pngDir, cf); err != nil {
			return err
		}
	}
	if forecastFlags.jsonPath != "" {
		if err := writeModels(forecastFlags.jsonPath, cf); err != nil {
			return err
		}
	}
	return nil
}

func printMetricForecast(w io.Writer, cf *dashboard.CountryForecast, mf dashboard.MetricForecast, tail int, showModel bool) error {
	fmt.Fprintf(w, "%s %s, %d days ahead from %s to %s",
		cf.Country, mf.Metric, cf.Horizon,
		cf.Window.Start.Format(time.DateOnly), cf.Window.End.Format(time.DateOnly),
	)
	if mf.Cached {
		fmt.Fprint(w, " (cached model)")
	}
	fmt.Fprintln(w)

	res := mf.Results
	if n := len(res.T); tail > 0 && tail < n {
		res = res.Slice(n-tail, n)
	}
	if err := res.TablePrint(w); err != nil {
		return err
	}
	if sc := mf.Model.Series.Scores; sc != nil {
		fmt.Fprintf(w, "mse: %.3f  mae: %.3f  mape: %.3f  r2: %.3f\n", sc.MSE, sc.MAE, sc.MAPE, sc.R2)
	}
	if showModel {
		if err := mf.Model.TablePrint(w); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return nil
}

func writeForecastHTML(path string, cf *dashboard.CountryForecast) error {
	page, err := chart.ForecastPage(cf.Country, cf.Charts())
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("unable to render %s, %w", path, err)
	}
	return f.Close()
}

func componentsFile(dir, country string, m dataset.Metric) string {
	name := strings.ToLower(strings.NewReplacer(" ", "_", ",", "", "*", "").Replace(country))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, strings.ToLower(m.String())))
}

func writeComponentPNGs(dir string, cf *dashboard.CountryForecast) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, mf := range cf.Metrics {
		path := componentsFile(dir, cf.Country, mf.Metric)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := chart.ComponentsPNG(f, mf.Results); err != nil {
			f.Close()
			return fmt.Errorf("unable to plot %s, %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeModels(path string, cf *dashboard.CountryForecast) error {
	models := make(map[string]forecaster.Model, len(cf.Metrics))
	for _, mf := range cf.Metrics {
		models[mf.Metric.String()] = mf.Model
	}
	data, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode models, %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
