// Package router wires handlers and middleware to HTTP routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/essu-water/maintenance-api/internal/config"
	"github.com/essu-water/maintenance-api/internal/handler"
	"github.com/essu-water/maintenance-api/internal/middleware"
	"github.com/essu-water/maintenance-api/internal/model"
)

// Deps bundles everything route registration needs.  The Redis client
// may be nil, in which case the cache and rate-limit middleware are
// skipped entirely and the affected routes run unprotected.
type Deps struct {
	Cfg     config.Config
	Auth    *handler.AuthHandler
	Reports *handler.ReportHandler
	Users   *handler.UserHandler
	Redis   *redis.Client
}

// Register mounts every route on the given Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/", handler.Root)
	e.GET("/health", handler.Health)

	e.POST("/auth/register", d.Auth.Register)
	e.POST("/auth/login", d.Auth.Login)

	// Anonymous surface: the submission form and the public board.
	var submitMW, cacheMW []echo.MiddlewareFunc
	if d.Redis != nil {
		submitMW = append(submitMW, middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))
		cacheMW = append(cacheMW, middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis))
	}
	e.POST("/reports", d.Reports.Create, submitMW...)
	e.GET("/reports/public", d.Reports.ListPublic, cacheMW...)

	// Everything below needs a valid bearer token.
	auth := e.Group("", middleware.JWTAuth(d.Cfg.JWTSecret))
	auth.GET("/reports", d.Reports.List)
	auth.GET("/reports/:id", d.Reports.Get)
	auth.PUT("/reports/:id", d.Reports.Update)
	auth.GET("/users/:id", d.Users.Get)

	admin := auth.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/reports/:id", d.Reports.Delete)
	admin.GET("/users", d.Users.List)

	// Unmatched paths answer the same JSON error shape as everything else.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
	})
}
