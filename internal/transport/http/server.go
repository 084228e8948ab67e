// Package http provides the HTTP server implementation for switchboard.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/switchboard/internal/service"
	v1 "github.com/example/switchboard/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. All bindings from the
// external contract hang off /v1.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	return e
}
