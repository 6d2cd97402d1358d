/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for API consumers
  5. Bearer:     Static token check on /api routes only

ROUTE GROUPS:
  /health               Liveness probe (open)
  /api/*                JSON API (bearer-authenticated)
  /dashboard, /settings Server-rendered pages
  /settings, /holidays, /corrections (POST) Browser form submissions

AUTHENTICATION:
  A single static bearer token shared by all agents. The dashboard pages
  and their form posts are unauthenticated, matching a single-user
  deployment behind a private network or reverse proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - pages.go: Page rendering and form handling
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	origins := h.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health probe stays open so load balancers can reach it.
	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(requireBearer(h.cfg.BearerToken))

		r.Post("/heartbeat", h.RecordHeartbeat)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Post("/", h.UpdateSettings)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.AddHoliday)
			r.Post("/range", h.ApplyHolidayRange)
			r.Delete("/{date}", h.DeleteHoliday)
		})

		r.Route("/corrections", func(r chi.Router) {
			r.Get("/", h.ListCorrections)
			r.Post("/", h.ApplyCorrection)
			r.Delete("/{date}", h.DeleteCorrection)
		})

		r.Get("/summary", h.GetMonthlySummary)
		r.Get("/balance", h.GetPeriodBalance)
		r.Get("/export.xlsx", h.ExportWorkbook)

		// Dev/demo tooling
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
		r.Post("/reset", h.ResetDatabase)
	})

	// Server-rendered pages and their form posts
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	r.Get("/dashboard", h.DashboardPage)
	r.Get("/settings", h.SettingsPage)
	r.Post("/settings", h.SettingsForm)
	r.Post("/holidays", h.HolidayForm)
	r.Post("/holidays/{date}/delete", h.HolidayDeleteForm)
	r.Post("/corrections", h.CorrectionForm)
	r.Post("/corrections/{date}/delete", h.CorrectionDeleteForm)

	return r
}

// requireBearer rejects requests whose Authorization header does not
// carry the configured token.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			auth := r.Header.Get("Authorization")
			if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix || auth[len(prefix):] != token {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "Invalid or missing API token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
