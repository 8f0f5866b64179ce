package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/braymix/panda/internal/api"
	"github.com/braymix/panda/internal/api/handler"
	"github.com/braymix/panda/internal/api/middleware"
	"github.com/braymix/panda/internal/config"
	"github.com/braymix/panda/internal/pkg/metrics"
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	EventService    handler.EventServiceInterface
	ReadinessChecks []handler.ReadinessCheck
	AllowedOrigins  []string
	MetricsAuth     config.MetricsConfig

	// Metrics and Gatherer are optional; /metrics is only served with a Gatherer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New builds the echo instance with middleware and every route
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, deps.AllowedOrigins)
	if deps.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(deps.Metrics))
	}

	healthHandler := handler.NewHealthHandler(deps.ReadinessChecks...)
	e.GET("/health", healthHandler.Check)
	e.GET("/health/ready", healthHandler.Ready)

	if deps.Gatherer != nil {
		metricsHandler := promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
		e.GET("/metrics", echo.WrapHandler(metricsHandler), middleware.MetricsBasicAuth(deps.MetricsAuth))
	}

	eventHandler := handler.NewEventHandler(deps.EventService)
	events := e.Group("/api/events")
	events.GET("", eventHandler.Search)
	events.POST("", eventHandler.Create)
	events.GET("/:id", eventHandler.GetByID)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)

	return e
}
