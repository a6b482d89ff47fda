// Package server exposes stored rides over a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridedash/internal/service"
)

// Server serves the ride API
type Server struct {
	query  *service.QueryService
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the router over the query service
func New(query *service.QueryService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{query: query, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger(logger), cors())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rides := api.Group("/rides")
		{
			rides.GET("", s.listRides)
			rides.GET("/:id", s.getRide)
			rides.GET("/:id/export.txt", s.exportText)
		}
		api.GET("/fitness", s.fitness)
	}

	r.NoRoute(func(c *gin.Context) {
		errorJSON(c, http.StatusNotFound, "not found")
	})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
