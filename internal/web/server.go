// Package web wires the HTTP surface: the analysis relay endpoint and the
// owner-scoped record and roster API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/config"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/evanly-gh/remember-me/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	engine   analysis.Engine
	records  store.RecordStore
	blobs    store.BlobStore
	photoDir string
}

// NewServer creates a new web server. photoDir, when non-empty, is served as
// static files under the configured public URL so locally stored photos are
// reachable.
func NewServer(cfg *config.Config, port int, host string, engine analysis.Engine, records store.RecordStore, blobs store.BlobStore, photoDir string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		router:   r,
		engine:   engine,
		records:  records,
		blobs:    blobs,
		photoDir: photoDir,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // photo uploads over slow links
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
