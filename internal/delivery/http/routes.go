package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/paperrank/app/internal/middleware"
)

func NewRouter(handler *Handler, sessionMiddleware *middleware.SessionMiddleware, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestLogger(&requestLogFormatter{log: handler.log}))
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware.Attach)

		// Page routes
		r.Get("/", handler.Index)
		r.With(sessionMiddleware.Require).Post("/search", handler.SubmitSearch)
		r.Get("/results.csv", handler.DownloadCSV)

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   allowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
				AllowCredentials: true,
				MaxAge:           300,
			}))

			r.With(sessionMiddleware.Require).Post("/search", handler.APISearch)
			r.Get("/results", handler.APIResults)
			r.Get("/ranking-modes", handler.APIRankingModes)
		})
	})

	return r
}
