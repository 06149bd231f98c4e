package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID"},
		ExposedHeaders:   []string{"X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/promotions", h.ListPromotions)

		r.Route("/segments", func(r chi.Router) {
			r.Post("/analyze", h.AnalyzeSegment)
			r.Get("/download", h.DownloadSegment)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/generate", h.GenerateCampaign)
			r.Get("/last", h.LastCampaign)
			r.Get("/download", h.DownloadCampaign)
			r.Post("/test-send", h.TestSendCampaign)
		})
	})

	return r
}
