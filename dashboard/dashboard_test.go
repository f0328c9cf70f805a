package dashboard

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-covidcast/config"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/aouyang1/go-covidcast/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const testDays = 60

var dayZero = time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func day(d int) time.Time {
	return dayZero.AddDate(0, 0, d)
}

// testDataset has two countries with growing counts and a deterministic wobble
func testDataset() *dataset.Dataset {
	return scaledDataset(1)
}

func scaledDataset(scale float64) *dataset.Dataset {
	var records []dataset.Record
	for i := range testDays {
		x := float64(i)
		wobble := 3 * math.Sin(1.7*x)
		records = append(records,
			dataset.Record{
				Date:      day(i),
				Country:   "US",
				Confirmed: scale * (100 + 20*x + 8*math.Sin(2*math.Pi*x/7) + wobble),
				Deaths:    scale * (5 + 0.8*x + wobble/3),
				Recovered: scale * (10 + 6*x + wobble),
			},
			dataset.Record{
				Date:      day(i),
				Country:   "Italy",
				Confirmed: scale * (50 + 10*x + wobble),
				Deaths:    scale * (2 + 0.5*x + wobble/3),
				Recovered: scale * (4 + 3*x + wobble),
			},
		)
	}
	return dataset.New(records)
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	opts = append(opts, WithLogger(zap.NewNop()))
	svc, err := NewService(testDataset(), opts...)
	require.NoError(t, err)
	return svc
}

func TestNewServiceEmpty(t *testing.T) {
	_, err := NewService(dataset.New(nil))
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestWindow(t *testing.T) {
	svc := newTestService(t)

	testData := map[string]struct {
		start   time.Time
		end     time.Time
		expLen  int
		warning string
	}{
		"defaults": {
			expLen: 2 * testDays,
		},
		"inside": {
			start:  day(10),
			end:    day(19),
			expLen: 20,
		},
		"start before data": {
			start:   day(-5),
			end:     day(4),
			expLen:  10,
			warning: "Invalid Start Date",
		},
		"end after data": {
			start:   day(50),
			end:     day(100),
			expLen:  20,
			warning: "Invalid End Date",
		},
		"both outside warns on start": {
			start:   day(-5),
			end:     day(100),
			expLen:  2 * testDays,
			warning: "Invalid Start Date",
		},
		"inverted": {
			start:  day(20),
			end:    day(10),
			expLen: 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			sel := svc.Window(td.start, td.end)
			assert.Equal(t, td.expLen, sel.Data.Len())
			assert.Equal(t, td.warning, sel.Warning)
		})
	}

	sel := svc.Window(time.Time{}, time.Time{})
	assert.Equal(t, day(0), sel.Start)
	assert.Equal(t, day(testDays-1), sel.End)
}

func TestTop(t *testing.T) {
	r := Top(testDataset(), 1)
	require.Len(t, r, 3)
	for _, m := range dataset.Metrics {
		require.Len(t, r[m], 1)
		assert.Equal(t, "US", r[m][0].Country)
	}
}

func TestForecast(t *testing.T) {
	svc := newTestService(t)
	sel := svc.Window(time.Time{}, time.Time{})

	cf, err := svc.Forecast(context.Background(), sel, "Italy", 2)
	require.NoError(t, err)
	assert.Equal(t, 730, cf.Horizon)
	require.Len(t, cf.Metrics, 3)

	for i, mf := range cf.Metrics {
		assert.Equal(t, dataset.Metrics[i], mf.Metric)
		assert.False(t, mf.Cached)
		require.Len(t, mf.T, testDays)
		require.Len(t, mf.Results.T, testDays+730)
		assert.Equal(t, day(testDays-1+730), mf.Results.T[len(mf.Results.T)-1])
	}

	confirmed, ok := cf.Metric(dataset.Confirmed)
	require.True(t, ok)
	last := len(confirmed.T) - 1
	assert.InDelta(t, confirmed.Y[last], confirmed.Results.Forecast[last], 50.0)
	assert.Len(t, cf.Charts(), 3)
}

func TestForecastErrors(t *testing.T) {
	svc := newTestService(t)
	sel := svc.Window(time.Time{}, time.Time{})

	testData := map[string]struct {
		sel     Selection
		country string
		years   int
		err     error
	}{
		"too few years": {
			sel:     sel,
			country: "US",
			years:   0,
			err:     forecaster.ErrInvalidYears,
		},
		"too many years": {
			sel:     sel,
			country: "US",
			years:   11,
			err:     forecaster.ErrInvalidYears,
		},
		"unknown country": {
			sel:     sel,
			country: "Atlantis",
			years:   1,
			err:     dataset.ErrUnknownCountry,
		},
		"country outside window": {
			sel:     svc.Window(day(100), day(120)),
			country: "US",
			years:   1,
			err:     dataset.ErrUnknownCountry,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Forecast(context.Background(), td.sel, td.country, td.years)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestForecastTimeout(t *testing.T) {
	svc := newTestService(t, WithForecastTimeout(time.Nanosecond))
	sel := svc.Window(time.Time{}, time.Time{})

	_, err := svc.Forecast(context.Background(), sel, "US", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestService(t).Forecast(canceled, sel, "US", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecastCached(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	svc := newTestService(t, WithStore(st))
	sel := svc.Window(day(0), day(44))

	first, err := svc.Forecast(ctx, sel, "US", 1)
	require.NoError(t, err)
	second, err := svc.Forecast(ctx, sel, "US", 1)
	require.NoError(t, err)

	entries, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	for i := range first.Metrics {
		assert.False(t, first.Metrics[i].Cached)
		assert.True(t, second.Metrics[i].Cached)
		assert.InDeltaSlice(t, first.Metrics[i].Results.Forecast, second.Metrics[i].Results.Forecast, 1e-9)
	}
}

func TestForecastCachedPerDataset(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	original, err := NewService(testDataset(), WithStore(st), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	scaled, err := NewService(scaledDataset(1000), WithStore(st), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	_, err = original.Forecast(ctx, original.Window(day(0), day(44)), "US", 1)
	require.NoError(t, err)

	fc, err := scaled.Forecast(ctx, scaled.Window(day(0), day(44)), "US", 1)
	require.NoError(t, err)
	for _, mf := range fc.Metrics {
		assert.False(t, mf.Cached, mf.Metric.String())
		last := len(mf.Y) - 1
		assert.InEpsilon(t, mf.Y[last], mf.Results.Forecast[last], 0.05, mf.Metric.String())
	}

	entries, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestReport(t *testing.T) {
	svc := newTestService(t)
	sel := svc.Window(day(0), day(100))

	r, err := svc.Report(context.Background(), sel, "", 1)
	require.NoError(t, err)
	assert.Equal(t, "Invalid End Date", r.Warning)
	assert.Empty(t, r.Forecasts)
	assert.Len(t, r.Top5[dataset.Deaths], 2)

	r, err = svc.Report(context.Background(), sel, "US", 1)
	require.NoError(t, err)
	assert.Len(t, r.Forecasts, 3)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.DefaultPageSize = 10
	cfg.Server.MaxPageSize = 50
	return cfg
}
