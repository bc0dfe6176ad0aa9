package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tenantcore/platform/internal/api/handler"
	"github.com/tenantcore/platform/internal/api/middleware"
	"github.com/tenantcore/platform/internal/api/ws"

	_ "github.com/tenantcore/platform/docs"
)

// Deps is everything the router needs. Handlers are built by the caller so
// the router only decides wiring and policy.
type Deps struct {
	Log         zerolog.Logger
	JWTSecret   string
	FrontendURL string
	CSPAdvanced bool
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer

	Users         middleware.UserLookup
	Auth          *handler.AuthHandler
	Modules       *handler.ModuleHandler
	Tenants       *handler.TenantHandler
	Notifications *handler.NotificationHandler
	Health        *handler.HealthHandler
	Gateway       *ws.Gateway
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.CORS(d.FrontendURL))
	e.Use(middleware.Secure(d.CSPAdvanced))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Route table ---
	for _, r := range d.routes() {
		e.Add(r.method, r.path, r.handler, d.chain(r)...).Name = r.name
	}

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
