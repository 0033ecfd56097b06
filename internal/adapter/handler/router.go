package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/insightloop/interview-insights/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	runsHandler *Runs
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, runsHandler *Runs) *Router {
	return &Router{
		cfg:         cfg,
		runsHandler: runsHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	rt.setupRunRoutes(v1)
}

// setupRunRoutes configures resolution run routes
func (rt *Router) setupRunRoutes(g *echo.Group) {
	runGroup := g.Group("/runs")

	if rt.runsHandler != nil {
		runGroup.POST("", rt.runsHandler.Create)
		runGroup.GET("", rt.runsHandler.List)
		runGroup.GET("/:id", rt.runsHandler.Get)
		runGroup.GET("/:id/sessions", rt.runsHandler.Sessions)
		runGroup.GET("/:id/speakers", rt.runsHandler.Speakers)
		runGroup.GET("/:id/quotes", rt.runsHandler.Quotes)
		runGroup.GET("/:id/placements", rt.runsHandler.Placements)
	} else {
		runGroup.POST("", rt.notImplemented)
		runGroup.GET("", rt.notImplemented)
		runGroup.GET("/:id", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
