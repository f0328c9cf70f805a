// Command covidcast serves the covid-19 dashboard and runs forecasts, rankings and exports
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aouyang1/go-covidcast/config"
	"github.com/aouyang1/go-covidcast/dashboard"
	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/aouyang1/go-covidcast/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgPath  string
	envPath  string
	logLevel string
	dataPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "covidcast",
	Short: "Covid-19 dashboard and per country forecasts",
	Long: `covidcast explores the Confirmed, Deaths and Recovered case counts of a covid-19
dataset and forecasts each country with an additive regression model.

Run "covidcast serve" to start the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envPath); err != nil {
			return err
		}
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if dataPath != "" {
			cfg.Data.Path = dataPath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration, %w", err)
		}

		logger, err = newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "covidcast.yaml", "Path to the yaml configuration")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "Path to a .env file of environment overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level overriding the configuration (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Path to the case dataset CSV overriding the configuration")

	rootCmd.AddCommand(serveCmd, forecastCmd, topCmd, exportCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// newService loads the dataset and opens the model cache when one is configured. The
// returned close func releases the cache.
func newService(ctx context.Context) (*dashboard.Service, func(), error) {
	start := time.Now()
	ds, err := dataset.LoadFile(cfg.Data.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("loaded dataset",
		zap.String("path", cfg.Data.Path),
		zap.Int("rows", ds.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	opts := []dashboard.ServiceOption{
		dashboard.WithLogger(logger),
		dashboard.WithForecastTimeout(cfg.Forecast.Timeout),
	}
	if cfg.Forecast.Weekend {
		fOpt := forecaster.NewDefaultOptions()
		fOpt.SeriesOptions.WeekendOptions.Enabled = true
		opts = append(opts, dashboard.WithForecasterOptions(fOpt))
	}
	closeFn := func() {}
	if cfg.Store.Path != "" {
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, dashboard.WithStore(st))
		closeFn = func() {
			if err := st.Close(); err != nil {
				logger.Warn("unable to close model cache", zap.Error(err))
			}
		}
	}

	svc, err := dashboard.NewService(ds, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}

// windowFlags are the date window flags shared by the subcommands
type windowFlags struct {
	start string
	end   string
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "First date of the window (default: first date of the dataset)")
	cmd.Flags().StringVar(&w.end, "end", "", "Last date of the window (default: last date of the dataset)")
}

func (w *windowFlags) selection(svc *dashboard.Service) (dashboard.Selection, error) {
	var start, end time.Time
	var err error
	if w.start != "" {
		if start, err = dataset.ParseDate(w.start); err != nil {
			return dashboard.Selection{}, fmt.Errorf("start, %w", err)
		}
	}
	if w.end != "" {
		if end, err = dataset.ParseDate(w.end); err != nil {
			return dashboard.Selection{}, fmt.Errorf("end, %w", err)
		}
	}
	sel := svc.Window(start, end)
	if sel.Warning != "" {
		logger.Warn(sel.Warning,
			zap.String("start", sel.Start.Format(time.DateOnly)),
			zap.String("end", sel.End.Format(time.DateOnly)),
		)
	}
	return sel, nil
}
