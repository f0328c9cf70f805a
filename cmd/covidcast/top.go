package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-covidcast/chart"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/spf13/cobra"
)

var topFlags struct {
	window windowFlags
	metric string
	n      int
	full   bool
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank the countries with the most cases",
	Long: `Ranks countries by their summed metric over the date window, or the full dataset
with --full. Without --metric every metric is ranked.`,
	RunE: runTop,
}

func init() {
	f := topCmd.Flags()
	topFlags.window.register(topCmd)
	f.StringVar(&topFlags.metric, "metric", "", "Metric to rank by (default: all)")
	f.IntVar(&topFlags.n, "n", chart.TopBarCount, "Number of countries to list")
	f.BoolVar(&topFlags.full, "full", false, "Rank over the full dataset ignoring the window")
}

func runTop(cmd *cobra.Command, args []string) error {
	metrics := dataset.Metrics
	if topFlags.metric != "" {
		m, err := dataset.ParseMetric(topFlags.metric)
		if err != nil {
			return err
		}
		metrics = []dataset.Metric{m}
	}

	svc, closeSvc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSvc()

	ds := svc.Data()
	if !topFlags.full {
		sel, err := topFlags.window.selection(svc)
		if err != nil {
			return err
		}
		ds = sel.Data
	}
	return printTop(cmd.OutOrStdout(), ds, metrics, topFlags.n)
}

func printTop(w io.Writer, ds *dataset.Dataset, metrics []dataset.Metric, n int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tbl, "metric\trank\tcountry\ttotal\t")
	for _, m := range metrics {
		for i, total := range ds.TopN(m, n) {
			fmt.Fprintf(tbl, "%s\t%d\t%s\t%.0f\t\n", m, i+1, total.Country, total.Value)
		}
	}
	return tbl.Flush()
}
