package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/evanly-gh/remember-me/internal/web/handlers"
	"github.com/evanly-gh/remember-me/internal/web/middleware"
)

// maxAnalyzeBodySize bounds the relay request body. Base64-encoded camera
// photos can reach tens of megabytes.
const maxAnalyzeBodySize = 64 << 20

func (s *Server) setupRoutes() {
	// Create handlers
	analyzeHandler := handlers.NewAnalyzeHandler(s.engine)
	recordsHandler := handlers.NewRecordsHandler(s.records, s.blobs)
	rosterHandler := handlers.NewRosterHandler(s.records)

	// Reachability probe kept from the original relay.
	s.router.Get("/hello", handlers.Hello)

	// Health check (no owner required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// Analysis relay. No owner identity needed; nothing is persisted here.
	s.router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.RequestSize(maxAnalyzeBodySize))
		r.Post("/analyze-face", analyzeHandler.Analyze)
	})

	// Owner-scoped record API
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner())

			r.Post("/records", recordsHandler.Create)
			r.Get("/records", recordsHandler.List)
			r.Put("/records/{id}", recordsHandler.Update)
			r.Delete("/records/{id}", recordsHandler.Delete)

			r.Get("/roster", rosterHandler.Get)
		})
	})

	// Serve locally stored photos when the local blob store is in use.
	if s.photoDir != "" && !strings.HasPrefix(s.config.Storage.PublicURL, "http") {
		prefix := "/" + strings.Trim(s.config.Storage.PublicURL, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(s.photoDir)))
		s.router.Get(prefix+"/*", fs.ServeHTTP)
	}
}
