package engine

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
)

// NewEcho creates the echo instance with the middleware every server uses
func NewEcho(metrics *Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				Logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			Logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	e.Use(metrics.Middleware())
	return e
}

// RegisterRoutes wires the JSON API, operational endpoints and the web app.
// The app handler is served at every page route and as the fallback.
func (serverHandler *ServerHandler) RegisterRoutes(appHandler http.Handler) {
	e := serverHandler.Echo
	app := echo.WrapHandler(appHandler)

	// Serve wasm_exec.js (go-app expects it here)
	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File("web/wasm_exec.js")
	})
	// Register go-app specific resources
	e.GET("/app.js", app)
	e.GET("/app.css", app)
	e.GET("/manifest.webmanifest", app)
	// Serve static assets
	e.Static("/web", "web")
	e.File("/webapp/webapp.css", "webapp/webapp.css")

	api := e.Group("/api")
	api.GET("/v1/samples", serverHandler.GetSamples)
	api.GET("/statistics/main-metrics", serverHandler.GetMainMetrics)
	api.GET("/charts/line-comparison", serverHandler.GetLineComparison)

	reports := api.Group("/wastewater-reports")
	reports.GET("", serverHandler.GetReports)
	reports.GET("/search", serverHandler.SearchReports)
	reports.GET("/:report_id", serverHandler.GetReport)
	reports.POST("", serverHandler.CreateReport, serverHandler.RequireToken())
	reports.PUT("/:report_id", serverHandler.UpdateReport, serverHandler.RequireToken())

	api.POST("/auth/register", serverHandler.Register)
	api.POST("/auth/login", serverHandler.Login)

	api.GET("/routes", serverHandler.GetRoutes)
	api.GET("/routes/resolve", serverHandler.ResolveRoute)
	api.GET("/about", serverHandler.GetAboutInfo)

	e.GET("/health", serverHandler.Health)
	e.GET("/metrics", echo.WrapHandler(serverHandler.Metrics.Handler()))

	RegisterPageRoutes(e, serverHandler.Routes, appHandler)

	// Serve go-app handler for all other routes (must be last)
	e.Any("/*", app)
}
