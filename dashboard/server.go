package dashboard

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/aouyang1/go-covidcast/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the dashboard http server
type Server struct {
	echo     *echo.Echo
	svc      *Service
	logger   *zap.Logger
	server   config.ServerConfig
	forecast config.ForecastConfig
}

// NewServer registers the dashboard routes over svc
func NewServer(svc *Service, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Renderer = newTemplateRenderer()

	s := &Server{
		echo:     e,
		svc:      svc,
		logger:   logger,
		server:   cfg.Server,
		forecast: cfg.Forecast,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Error("request error", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.getIndex)
	s.echo.GET("/healthz", s.getHealth)

	charts := s.echo.Group("/charts")
	charts.GET("/overview", s.getOverviewChart)
	charts.GET("/forecast", s.getForecastChart)
	charts.GET("/components.png", s.getComponentsPNG)

	tables := s.echo.Group("/tables")
	tables.GET("/forecast", s.getForecastTable)

	api := s.echo.Group("/api")
	api.GET("/bounds", s.getBounds)
	api.GET("/records", s.getRecords)
	api.GET("/countries", s.getCountries)
	api.GET("/top", s.getTop)
	api.GET("/forecast", s.getForecast)
	api.GET("/export.xlsx", s.getExport)
}

// Handler returns the http handler of the dashboard
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address and blocks until the server is shut down
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = s.server.ReadTimeout
	s.echo.Server.WriteTimeout = s.server.WriteTimeout

	s.logger.Info("starting dashboard", zap.String("addr", s.server.Addr))
	if err := s.echo.Start(s.server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in flight requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping dashboard")
	return s.echo.Shutdown(ctx)
}

// Addr returns the listening address once started, nil before
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}
