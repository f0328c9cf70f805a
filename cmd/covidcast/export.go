package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportFlags struct {
	window  windowFlags
	country string
	years   int
	out     string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the window, rankings and forecasts to xlsx",
	Long: `Writes the filtered dataset with the top 5 and top 10 rankings into an xlsx workbook.
With --country the forecast of every metric is added as its own sheet.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	exportFlags.window.register(exportCmd)
	f.StringVar(&exportFlags.country, "country", "", "Country to forecast into the workbook")
	f.IntVar(&exportFlags.years, "years", 0, "Years to forecast ahead (default: configured default)")
	f.StringVarP(&exportFlags.out, "out", "o", "covidcast.xlsx", "Path of the xlsx workbook")
}

func runExport(cmd *cobra.Command, args []string) error {
	years := exportFlags.years
	if years == 0 {
		years = cfg.Forecast.DefaultYears
	}

	ctx := cmd.Context()
	svc, closeSvc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeSvc()

	sel, err := exportFlags.window.selection(svc)
	if err != nil {
		return err
	}
	r, err := svc.Report(ctx, sel, exportFlags.country, years)
	if err != nil {
		return err
	}

	f, err := os.Create(exportFlags.out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.Write(f); err != nil {
		return fmt.Errorf("unable to write %s, %w", exportFlags.out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("exported workbook", zap.String("path", exportFlags.out), zap.Int("forecasts", len(r.Forecasts)))
	return nil
}
