package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes and the SPA fallback.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - explicit origins only, credentials allowed for the SPA
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		// Events
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)

			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", h.GetEvent)
				r.Put("/", h.UpdateEvent)
				r.Delete("/", h.DeleteEvent)

				r.Get("/inscriptions", h.ListInscriptions)
				r.Post("/inscriptions", h.CreateInscription)
			})
		})

		// Inscription sheets
		r.Route("/inscriptions/{inscriptionID}", func(r chi.Router) {
			r.Get("/", h.GetInscription)
			r.Put("/", h.UpdateInscription)
			r.Delete("/", h.DeleteInscription)
			r.Put("/status", h.UpdateInscriptionStatus)

			r.Get("/competitors", h.ListCompetitors)
			r.Post("/competitors", h.AddCompetitor)

			r.Get("/entry-form", h.EntryFormPDF)
			r.Post("/send", h.SendEntryForm)
			r.Get("/dispatches", h.ListDispatches)
		})

		// Competitors addressed directly
		r.Put("/competitors/{competitorID}", h.UpdateCompetitor)
		r.Delete("/competitors/{competitorID}", h.DeleteCompetitor)
	})

	// Serve the SPA for everything else
	spaHandler(r, "./web/dist")

	return r
}

// spaHandler serves static files and falls back to index.html for SPA routing.
func spaHandler(r chi.Router, staticPath string) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		// Skip API routes
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/health") {
			http.NotFound(w, req)
			return
		}

		filePath := filepath.Join(staticPath, path)
		if _, err := os.Stat(filePath); err == nil {
			http.ServeFile(w, req, filePath)
			return
		}

		// Unknown paths get index.html so client-side routing works
		indexPath := filepath.Join(staticPath, "index.html")
		http.ServeFile(w, req, indexPath)
	})
}
