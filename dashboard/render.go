package dashboard

import (
	"embed"
	"html/template"
	"io"
	"maps"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateRenderer renders the embedded html templates for echo
type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// formatCell renders a table value, missing values are blank
func formatCell(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// recordPage is one page of the filtered records table
type recordPage struct {
	Rows      [][]string
	First     int
	Last      int
	Total     int
	PrevQuery template.URL
	NextQuery template.URL
}

var recordColumns = []string{"Date", "Country", "Confirmed", "Deaths", "Recovered"}

func newRecordPage(records []dataset.Record, offset, limit int, query url.Values) recordPage {
	total := len(records)
	start := min(offset, total)
	end := min(start+limit, total)

	p := recordPage{
		Rows:  make([][]string, 0, end-start),
		First: start + 1,
		Last:  end,
		Total: total,
	}
	if start == end {
		p.First = start
	}
	for _, r := range records[start:end] {
		p.Rows = append(p.Rows, []string{
			r.Date.Format(time.DateOnly),
			r.Country,
			formatCell(r.Confirmed, -1),
			formatCell(r.Deaths, -1),
			formatCell(r.Recovered, -1),
		})
	}

	pageQuery := func(offset int) template.URL {
		q := maps.Clone(query)
		q.Set("offset", strconv.Itoa(offset))
		return template.URL(q.Encode())
	}
	if start > 0 {
		p.PrevQuery = pageQuery(max(start-limit, 0))
	}
	if end < total {
		p.NextQuery = pageQuery(end)
	}
	return p
}

type indexData struct {
	Start       string
	End         string
	MinDate     string
	MaxDate     string
	Warning     string
	Rows        int
	Columns     []string
	Records     recordPage
	Countries   []string
	Country     string
	Years       int
	MinYears    int
	MaxYears    int
	Metrics     []dataset.Metric
	Query       template.URL
	WindowQuery template.URL
}

// getIndex renders the controls with the overview and forecast charts embedded as frames.
// The country defaults to the first country of the window.
func (s *Server) getIndex(c echo.Context) error {
	sel, err := s.selection(c)
	if err != nil {
		return err
	}
	years, err := s.years(c)
	if err != nil {
		return err
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return err
	}

	countries := sel.Data.Countries()
	country := c.QueryParam("country")
	if !sel.Data.HasCountry(country) {
		country = ""
		if len(countries) > 0 {
			country = countries[0]
		}
	}

	minDate, maxDate := s.svc.Bounds()
	windowQuery := forecastQuery(sel, "", years)
	windowQuery.Del("years")
	query := forecastQuery(sel, country, years)

	return c.Render(http.StatusOK, "index.html", indexData{
		Start:       sel.Start.Format(time.DateOnly),
		End:         sel.End.Format(time.DateOnly),
		MinDate:     minDate.Format(time.DateOnly),
		MaxDate:     maxDate.Format(time.DateOnly),
		Warning:     sel.Warning,
		Rows:        sel.Data.Len(),
		Columns:     recordColumns,
		Records:     newRecordPage(sel.Data.Records(), offset, s.server.DefaultPageSize, query),
		Countries:   countries,
		Country:     country,
		Years:       years,
		MinYears:    s.forecast.MinYears,
		MaxYears:    s.forecast.MaxYears,
		Metrics:     dataset.Metrics,
		Query:       template.URL(query.Encode()),
		WindowQuery: template.URL(windowQuery.Encode()),
	})
}

type forecastTable struct {
	Metric  dataset.Metric
	Columns []string
	Rows    [][]string
}

type forecastTableData struct {
	Country string
	Horizon int
	Warning string
	Tables  []forecastTable
}

func newForecastTable(mf MetricForecast) forecastTable {
	table := forecastTable{
		Metric:  mf.Metric,
		Columns: mf.Results.Columns(),
	}
	for _, row := range mf.Results.Rows() {
		cells := make([]string, 0, len(table.Columns))
		cells = append(cells, row.DS.Format(time.DateOnly))
		for _, col := range table.Columns[1:] {
			v, _ := row.Value(col)
			cells = append(cells, formatCell(v, 2))
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// getForecastTable renders the prediction table of each metric, or of the metric query
// parameter when given
func (s *Server) getForecastTable(c echo.Context) error {
	var only *dataset.Metric
	if c.QueryParam("metric") != "" {
		m, err := metricParam(c)
		if err != nil {
			return err
		}
		only = &m
	}
	cf, err := s.countryForecast(c)
	if err != nil {
		return err
	}

	data := forecastTableData{
		Country: cf.Country,
		Horizon: cf.Horizon,
		Warning: cf.Window.Warning,
	}
	for _, mf := range cf.Metrics {
		if only != nil && mf.Metric != *only {
			continue
		}
		data.Tables = append(data.Tables, newForecastTable(mf))
	}
	return c.Render(http.StatusOK, "forecast_table.html", data)
}
