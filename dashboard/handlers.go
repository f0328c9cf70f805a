package dashboard

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aouyang1/go-covidcast/chart"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/labstack/echo/v4"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// --- query parameters ---

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := dataset.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s, %w", name, err)
	}
	return t, nil
}

func (s *Server) selection(c echo.Context) (Selection, error) {
	start, err := parseDateParam(c, "start")
	if err != nil {
		return Selection{}, err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return Selection{}, err
	}
	return s.svc.Window(start, end), nil
}

func (s *Server) years(c echo.Context) (int, error) {
	v := c.QueryParam("years")
	if v == "" {
		return s.forecast.DefaultYears, nil
	}
	years, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("years %q, %w", v, ErrInvalidParam)
	}
	if years < s.forecast.MinYears || years > s.forecast.MaxYears {
		return 0, fmt.Errorf("%d, %w", years, forecaster.ErrInvalidYears)
	}
	return years, nil
}

func metricParam(c echo.Context) (dataset.Metric, error) {
	v := c.QueryParam("metric")
	if v == "" {
		return dataset.Confirmed, nil
	}
	return dataset.ParseMetric(v)
}

func countryParam(c echo.Context) (string, error) {
	country := c.QueryParam("country")
	if country == "" {
		return "", fmt.Errorf("country is required, %w", ErrInvalidParam)
	}
	return country, nil
}

func intParam(c echo.Context, name string, defaultVal int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s %q, %w", name, v, ErrInvalidParam)
	}
	return n, nil
}

func (s *Server) paginationParams(c echo.Context) (int, int, error) {
	limit, err := intParam(c, "limit", s.server.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit == 0 {
		limit = s.server.DefaultPageSize
	}
	limit = min(limit, s.server.MaxPageSize)

	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// forecastQuery carries the window, country and years of a forecast request into links
func forecastQuery(sel Selection, country string, years int) url.Values {
	q := url.Values{}
	q.Set("start", sel.Start.Format(time.DateOnly))
	q.Set("end", sel.End.Format(time.DateOnly))
	if country != "" {
		q.Set("country", country)
	}
	q.Set("years", strconv.Itoa(years))
	return q
}

// --- json views, NaN has no json encoding ---

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type recordView struct {
	Date      string   `json:"date"`
	Country   string   `json:"country"`
	Confirmed *float64 `json:"confirmed"`
	Deaths    *float64 `json:"deaths"`
	Recovered *float64 `json:"recovered"`
}

func newRecordView(r dataset.Record) recordView {
	return recordView{
		Date:      r.Date.Format(time.DateOnly),
		Country:   r.Country,
		Confirmed: nullable(r.Confirmed),
		Deaths:    nullable(r.Deaths),
		Recovered: nullable(r.Recovered),
	}
}

type scoresView struct {
	MSE  *float64 `json:"mse"`
	MAE  *float64 `json:"mae"`
	MAPE *float64 `json:"mape"`
	R2   *float64 `json:"r2"`
}

type metricForecastView struct {
	Metric  dataset.Metric           `json:"metric"`
	Cached  bool                     `json:"cached"`
	Scores  *scoresView              `json:"scores,omitempty"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

type forecastView struct {
	Country   string               `json:"country"`
	Years     int                  `json:"years"`
	Horizon   int                  `json:"horizon"`
	Start     string               `json:"start"`
	End       string               `json:"end"`
	Warning   string               `json:"warning,omitempty"`
	Forecasts []metricForecastView `json:"forecasts"`
}

func newForecastView(cf *CountryForecast) forecastView {
	view := forecastView{
		Country: cf.Country,
		Years:   cf.Years,
		Horizon: cf.Horizon,
		Start:   cf.Window.Start.Format(time.DateOnly),
		End:     cf.Window.End.Format(time.DateOnly),
		Warning: cf.Window.Warning,
	}
	for _, mf := range cf.Metrics {
		mv := metricForecastView{
			Metric:  mf.Metric,
			Cached:  mf.Cached,
			Columns: mf.Results.Columns(),
		}
		if sc := mf.Model.Series.Scores; sc != nil {
			mv.Scores = &scoresView{
				MSE:  nullable(sc.MSE),
				MAE:  nullable(sc.MAE),
				MAPE: nullable(sc.MAPE),
				R2:   nullable(sc.R2),
			}
		}
		for _, row := range mf.Results.Rows() {
			out := make(map[string]interface{}, len(mv.Columns))
			out[forecaster.ColDS] = row.DS.Format(time.DateOnly)
			for _, col := range mv.Columns[1:] {
				v, _ := row.Value(col)
				out[col] = nullable(v)
			}
			mv.Rows = append(mv.Rows, out)
		}
		view.Forecasts = append(view.Forecasts, mv)
	}
	return view
}

// --- handlers ---

func (s *Server) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getBounds(c echo.Context) error {
	start, end := s.svc.Bounds()
	return c.JSON(http.StatusOK, map[string]string{
		"start": start.Format(time.DateOnly),
		"end":   end.Format(time.DateOnly),
	})
}

func (s *Server) getRecords(c echo.Context) error {
	sel, err := s.selection(c)
	if err != nil {
		return err
	}
	limit, offset, err := s.paginationParams(c)
	if err != nil {
		return err
	}

	records := sel.Data.Records()
	total := len(records)
	start := min(offset, total)
	end := min(start+limit, total)

	data := make([]recordView, 0, end-start)
	for _, r := range records[start:end] {
		data = append(data, newRecordView(r))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":    data,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"warning": sel.Warning,
	})
}

func (s *Server) getCountries(c echo.Context) error {
	sel, err := s.selection(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"countries": sel.Data.Countries(),
		"warning":   sel.Warning,
	})
}

// getTop ranks countries over the window, or over the full dataset with scope=full
func (s *Server) getTop(c echo.Context) error {
	m, err := metricParam(c)
	if err != nil {
		return err
	}
	n, err := intParam(c, "n", chart.TopBarCount)
	if err != nil {
		return err
	}

	scope := c.QueryParam("scope")
	var ds *dataset.Dataset
	switch scope {
	case "", "window":
		scope = "window"
		sel, err := s.selection(c)
		if err != nil {
			return err
		}
		ds = sel.Data
	case "full":
		ds = s.svc.Data()
	default:
		return fmt.Errorf("scope %q, %w", scope, ErrInvalidParam)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"metric": m,
		"scope":  scope,
		"data":   ds.TopN(m, n),
	})
}

func (s *Server) countryForecast(c echo.Context) (*CountryForecast, error) {
	sel, err := s.selection(c)
	if err != nil {
		return nil, err
	}
	country, err := countryParam(c)
	if err != nil {
		return nil, err
	}
	years, err := s.years(c)
	if err != nil {
		return nil, err
	}
	return s.svc.Forecast(c.Request().Context(), sel, country, years)
}

func (s *Server) getForecast(c echo.Context) error {
	cf, err := s.countryForecast(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newForecastView(cf))
}

func renderPage(c echo.Context, page *components.Page) error {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("unable to render page, %w", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) getOverviewChart(c echo.Context) error {
	sel, err := s.selection(c)
	if err != nil {
		return err
	}
	page, err := s.svc.Overview(sel)
	if err != nil {
		return err
	}
	return renderPage(c, page)
}

func (s *Server) getForecastChart(c echo.Context) error {
	cf, err := s.countryForecast(c)
	if err != nil {
		return err
	}
	page, err := chart.ForecastPage(cf.Country, cf.Charts())
	if err != nil {
		return err
	}
	return renderPage(c, page)
}

func (s *Server) getComponentsPNG(c echo.Context) error {
	m, err := metricParam(c)
	if err != nil {
		return err
	}
	cf, err := s.countryForecast(c)
	if err != nil {
		return err
	}
	mf, _ := cf.Metric(m)

	var buf bytes.Buffer
	if err := chart.ComponentsPNG(&buf, mf.Results); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// getExport downloads the window and rankings as xlsx, with the forecast of country
// when one is given
func (s *Server) getExport(c echo.Context) error {
	sel, err := s.selection(c)
	if err != nil {
		return err
	}
	years, err := s.years(c)
	if err != nil {
		return err
	}

	r, err := s.svc.Report(c.Request().Context(), sel, c.QueryParam("country"), years)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="covidcast.xlsx"`)
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
