package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/braymix/panda/internal/domain/event"
	"github.com/braymix/panda/internal/pkg/logger"
)

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error      string            `json:"error"`
	Code       int               `json:"code,omitempty"`
	Details    string            `json:"details,omitempty"`
	Violations []event.Violation `json:"violations,omitempty"`
}

// CustomHTTPErrorHandler renders errors as ErrorResponse and logs 5xx
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
		Code:  http.StatusInternalServerError,
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp.Code = he.Code
		switch m := he.Message.(type) {
		case ErrorResponse:
			resp = m
			resp.Code = he.Code
		case string:
			resp.Error = m
		default:
			resp.Error = http.StatusText(he.Code)
		}
	}

	if resp.Code >= 500 {
		logger.Error("server error",
			zap.Int("status", resp.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code)
	} else {
		err = c.JSON(resp.Code, resp)
	}
	if err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}
