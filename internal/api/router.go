package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/mediagrab/internal/api/handler"
	mw "github.com/iconidentify/mediagrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	downloadHandler *handler.DownloadHandler,
	proxyHandler *handler.ProxyHandler,
	platformsHandler *handler.PlatformsHandler,
	healthHandler *handler.HealthHandler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery)
	// Outer guard well above the proxy fetch deadline; per-fetch deadlines
	// live in the proxy itself.
	r.Use(middleware.Timeout(5 * time.Minute))

	// CORS for the browser client
	r.Use(mw.CORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/download", downloadHandler.Download)
		r.Get("/proxy-download", proxyHandler.Download)
		r.Get("/proxy-image", proxyHandler.Image)
		r.Get("/platforms", platformsHandler.List)
		r.Get("/health", healthHandler.Health)
	})

	return r
}
