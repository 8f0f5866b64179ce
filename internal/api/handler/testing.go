package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/braymix/panda/internal/api"
)

// NewTestEcho creates an echo instance wired like the server, for tests
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}
