package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root returns a small service banner with the endpoint map, useful when
// poking the API by hand.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Maintenance Reports API",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":  "/health",
			"auth":    "/auth",
			"reports": "/reports",
			"users":   "/users",
		},
	})
}
