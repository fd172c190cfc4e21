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

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Organization-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", h.health.HandleHealth)
	r.Get("/health/live", h.health.HandleLiveness)
	r.Get("/health/ready", h.health.HandleReadiness)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/insights/preview", h.PostPreview)

		r.Route("/insights/{kind}", func(r chi.Router) {
			r.Get("/overview", h.GetOverview)
			r.Get("/trend", h.GetTrend)
			r.Get("/status", h.GetStatusBreakdown)
			r.Get("/top", h.GetTopPerformers)
			r.Get("/benchmark", h.GetBenchmark)
			r.Get("/engagement", h.GetEngagement)
			r.Get("/compare", h.GetCompare)
			r.Get("/history", h.GetHistory)
			r.Post("/refresh", h.PostRefresh)
		})
	})

	return r
}
