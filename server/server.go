// Package server wires the HTTP surface: echo instance, middleware, routes,
// and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/finsense/internal/profile"
	"github.com/hrygo/finsense/plugin/ai/session"
	apiv1 "github.com/hrygo/finsense/server/router/api/v1"
	"github.com/hrygo/finsense/store"
)

type Server struct {
	echoServer *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	cleanupJob *session.CleanupJob
}

// NewServer assembles the HTTP server around an already-constructed API
// service.
func NewServer(profile *profile.Profile, store *store.Store, api *apiv1.APIV1Service) *Server {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status))
			return nil
		},
	}))
	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.CORS())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.Register(echoServer)

	s := &Server{
		echoServer: echoServer,
		Profile:    profile,
		Store:      store,
	}

	if api.Sessions != nil {
		s.cleanupJob = session.NewCleanupJob(api.Sessions, session.DefaultCleanupConfig())
	}

	return s
}

// Start begins serving and launches background jobs. Non-blocking errors
// are reported through the returned channel semantics of echo.Start.
func (s *Server) Start(ctx context.Context) error {
	if s.cleanupJob != nil {
		s.cleanupJob.Start(ctx)
	}

	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", slog.String("addr", addr), slog.String("mode", s.Profile.Mode))
	return s.echoServer.Start(addr)
}

// Shutdown drains in-flight requests, stops background jobs, and closes the
// store.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.cleanupJob != nil {
		s.cleanupJob.Stop()
	}

	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown http server", slog.String("error", err.Error()))
	}

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Error("failed to close store", slog.String("error", err.Error()))
		}
	}

	slog.Info("server stopped")
}
