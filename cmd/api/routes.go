package main

import (
	"github.com/labstack/echo/v4"

	"github.com/rpruizc/scimonitor/internal/infrastructure/httpserver"
	"github.com/rpruizc/scimonitor/internal/middleware"
)

// SetupRoutes builds the HTTP server and registers all routes.
func SetupRoutes(container *Container) *httpserver.Server {
	cfg := container.Config

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, container.Logger)

	server.Use(
		middleware.Recovery(container.Logger),
		middleware.Logging(middleware.LoggingConfig{
			Logger:       container.Logger,
			SkipPrefixes: []string{"/health"},
		}),
		middleware.CORS(),
	)

	server.RegisterRoutes(func(e *echo.Echo) {
		httpserver.NewHealthEndpoints(container.Reporter).Register(e)

		v1 := e.Group("/api/v1")
		container.PaperHandler.RegisterRoutes(v1)
		container.CacheHandler.RegisterRoutes(v1)
	})

	return server
}
