// Package report exports the dashboard state as an xlsx workbook
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/xuri/excelize/v2"
)

const (
	SheetFiltered = "Filtered Dataset"
	SheetTop5     = "Top 5"
	SheetTop10    = "Top 10"

	forecastSheetPrefix = "Forecast "
	defaultSheet        = "Sheet1"
)

var ErrDuplicateForecast = errors.New("metric is already forecast in report")

// Window is the inclusive date range of the filtered dataset
type Window struct {
	Start time.Time
	End   time.Time
}

// Forecast is the prediction table of one metric of a country
type Forecast struct {
	Country string
	Metric  dataset.Metric
	Results *forecaster.Results
}

// Report is everything the workbook is written from. Rankings are listed per metric in
// dataset.Metrics order.
type Report struct {
	Window    Window
	Warning   string
	Filtered  *dataset.Dataset
	Top5      map[dataset.Metric][]dataset.Total
	Top10     map[dataset.Metric][]dataset.Total
	Forecasts []Forecast
}

// ForecastSheet names the sheet of a forecast metric
func ForecastSheet(m dataset.Metric) string {
	return forecastSheetPrefix + m.String()
}

// Write encodes the report as an xlsx workbook
func (r *Report) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("unable to create header style, %w", err)
	}
	sw := &sheetWriter{f: f, headerStyle: headerStyle}

	if err := f.SetSheetName(defaultSheet, SheetFiltered); err != nil {
		return err
	}
	if err := sw.writeFiltered(r); err != nil {
		return fmt.Errorf("unable to write %s sheet, %w", SheetFiltered, err)
	}
	if err := sw.writeRanking(SheetTop5, r.Top5); err != nil {
		return fmt.Errorf("unable to write %s sheet, %w", SheetTop5, err)
	}
	if err := sw.writeRanking(SheetTop10, r.Top10); err != nil {
		return fmt.Errorf("unable to write %s sheet, %w", SheetTop10, err)
	}

	seen := make(map[dataset.Metric]bool, len(r.Forecasts))
	for _, fc := range r.Forecasts {
		if seen[fc.Metric] {
			return fmt.Errorf("%s, %w", fc.Metric, ErrDuplicateForecast)
		}
		seen[fc.Metric] = true
		if err := sw.writeForecast(fc); err != nil {
			return fmt.Errorf("unable to write %s sheet, %w", ForecastSheet(fc.Metric), err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Covid-19 Dashboard Export",
		Description: r.description(),
		Creator:     "covidcast",
	}); err != nil {
		return err
	}
	return f.Write(w)
}

func (r *Report) description() string {
	desc := fmt.Sprintf("Window %s to %s",
		r.Window.Start.Format(time.DateOnly), r.Window.End.Format(time.DateOnly))
	if r.Warning != "" {
		desc += ": " + r.Warning
	}
	return desc
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
}

func (sw *sheetWriter) writeHeader(sheet string, header []string, width float64) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := sw.f.SetCellStyle(sheet, "A1", lastCol+"1", sw.headerStyle); err != nil {
		return err
	}
	if err := sw.f.SetColWidth(sheet, "A", lastCol, width); err != nil {
		return err
	}
	return sw.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (sw *sheetWriter) writeRow(sheet string, rowIdx int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return sw.f.SetSheetRow(sheet, cell, &row)
}

func (sw *sheetWriter) writeFiltered(r *Report) error {
	header := []string{"Date", "Country"}
	for _, m := range dataset.Metrics {
		header = append(header, m.String())
	}
	if err := sw.writeHeader(SheetFiltered, header, 16); err != nil {
		return err
	}

	records := r.Filtered.Records()
	for i, rec := range records {
		row := []interface{}{rec.Date.Format(time.DateOnly), rec.Country}
		for _, m := range dataset.Metrics {
			row = append(row, cellValue(rec.Value(m)))
		}
		if err := sw.writeRow(SheetFiltered, i+2, row); err != nil {
			return err
		}
	}
	if len(records) == 0 {
		return nil
	}

	lastCell, err := excelize.CoordinatesToCellName(len(header), len(records)+1)
	if err != nil {
		return err
	}
	return sw.f.AutoFilter(SheetFiltered, "A1:"+lastCell, nil)
}

func (sw *sheetWriter) writeRanking(sheet string, ranking map[dataset.Metric][]dataset.Total) error {
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := sw.writeHeader(sheet, []string{"Metric", "Rank", "Country", "Total"}, 14); err != nil {
		return err
	}

	rowIdx := 2
	for _, m := range dataset.Metrics {
		for i, tot := range ranking[m] {
			row := []interface{}{m.String(), i + 1, tot.Country, cellValue(tot.Value)}
			if err := sw.writeRow(sheet, rowIdx, row); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}

func (sw *sheetWriter) writeForecast(fc Forecast) error {
	sheet := ForecastSheet(fc.Metric)
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return err
	}
	cols := fc.Results.Columns()
	if err := sw.writeHeader(sheet, append([]string{"Country"}, cols...), 14); err != nil {
		return err
	}

	for i, res := range fc.Results.Rows() {
		row := []interface{}{fc.Country, res.DS.Format(time.DateOnly)}
		for _, col := range cols[1:] {
			v, _ := res.Value(col)
			row = append(row, cellValue(v))
		}
		if err := sw.writeRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// cellValue leaves NaN cells empty
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
