package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecast"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var ErrInvalidParam = errors.New("invalid query parameter")

var badRequestErrs = []error{
	ErrInvalidParam,
	dataset.ErrInvalidDate,
	dataset.ErrUnknownMetric,
	forecaster.ErrInvalidYears,
	forecast.ErrInsufficientTrainingData,
	forecaster.ErrInsufficientResidual,
}

// statusCode maps domain errors onto http status codes
func statusCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, dataset.ErrUnknownCountry):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// handleError writes errors as json {"message": ...}. Internal errors are logged and
// hidden from the client.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusCode(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("internal error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		msg = http.StatusText(code)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"message": msg})
	}
	if err != nil {
		s.logger.Error("unable to write error response", zap.Error(err))
	}
}
