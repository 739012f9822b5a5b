// Package http exposes the assistant and dashboard as a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// ErrMissingAssistant is returned when the assistant service is not provided.
var ErrMissingAssistant = errors.New("http: assistant service is required")

// Ports aggregates the services served over HTTP.
type Ports struct {
	Assistant driving.Assistant

	// Dashboard is optional; /api/v1/summary answers 503 without it.
	Dashboard driving.DashboardService

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP API server.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil || ports.Assistant == nil {
		return nil, ErrMissingAssistant
	}

	s := &Server{ports: ports, echo: echo.New()}
	s.echo.Use(requestLogger)
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.healthz)

	g := s.echo.Group("/api/v1")
	g.POST("/ask", s.ask)
	g.GET("/summary", s.summary)
	g.GET("/chat", s.chat)

	if s.ports.Metrics != nil {
		h := s.ports.Metrics
		s.echo.GET("/metrics", func(c *echo.Context) error {
			h.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		err := next(c)
		req := c.Request()
		if err != nil {
			logger.Debug("%s %s failed after %s: %v", req.Method, req.URL.Path, time.Since(start), err)
		} else {
			logger.Debug("%s %s in %s", req.Method, req.URL.Path, time.Since(start))
		}
		return err
	}
}
