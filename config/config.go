// Package config loads the covidcast configuration from yaml with environment overrides
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration file
const (
	EnvAddr     = "COVIDCAST_ADDR"
	EnvData     = "COVIDCAST_DATA"
	EnvDB       = "COVIDCAST_DB"
	EnvLogLevel = "COVIDCAST_LOG_LEVEL"
)

var (
	ErrNoDataPath      = errors.New("data path is required")
	ErrNoAddr          = errors.New("server address is required")
	ErrInvalidTimeout  = errors.New("timeouts must be positive")
	ErrInvalidYears    = errors.New("forecast years must be ordered min <= default <= max within 1 to 10")
	ErrInvalidPageSize = errors.New("page sizes must satisfy 0 < default <= max")
)

// Config holds all covidcast configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Store    StoreConfig    `yaml:"store"`
	Forecast ForecastConfig `yaml:"forecast"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the dashboard http server
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
}

// DataConfig points at the case dataset
type DataConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig configures the fitted model cache. An empty path disables caching.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ForecastConfig bounds the forecast horizon selection in years. Weekend fits a separate
// weekend offset for countries that under report on saturdays and sundays.
type ForecastConfig struct {
	DefaultYears int           `yaml:"default_years"`
	MinYears     int           `yaml:"min_years"`
	MaxYears     int           `yaml:"max_years"`
	Timeout      time.Duration `yaml:"timeout"`
	Weekend      bool          `yaml:"weekend"`
}

// LogConfig configures the application logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Data: DataConfig{
			Path: "dataset/covid-19.csv",
		},
		Store: StoreConfig{
			Path: "covidcast.db",
		},
		Forecast: ForecastConfig{
			DefaultYears: forecaster.MinYears,
			MinYears:     forecaster.MinYears,
			MaxYears:     forecaster.MaxYears,
			Timeout:      time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file over the defaults and applies environment
// overrides. An empty path or a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("unable to read config, %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("unable to parse config, %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadDotEnv loads environment variables from the given .env files. Missing files are
// skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("unable to load %s, %w", path, err)
		}
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to marshal config, %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write config, %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv(EnvData); path != "" {
		c.Data.Path = path
	}
	if path, set := os.LookupEnv(EnvDB); set {
		c.Store.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return ErrNoDataPath
	}
	if c.Server.Addr == "" {
		return ErrNoAddr
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 ||
		c.Server.ShutdownTimeout <= 0 || c.Forecast.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	f := c.Forecast
	if f.MinYears < forecaster.MinYears || f.MinYears > f.DefaultYears ||
		f.DefaultYears > f.MaxYears || f.MaxYears > forecaster.MaxYears {
		return ErrInvalidYears
	}
	if c.Server.DefaultPageSize <= 0 || c.Server.DefaultPageSize > c.Server.MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}
