package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/inzalo-api/internal/config"
	"github.com/zapponejosh/inzalo-api/internal/database"
)

// NewRouter builds the HTTP handler with all routes and middleware.
// limiter may be nil to disable rate limiting.
func NewRouter(h *Handlers, db *database.DB, cfg *config.Config, log *slog.Logger, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(log, cfg.IsDevelopment()),
		RequestIDMiddleware(),
		LoggingMiddleware(log),
		CORSMiddleware(),
	)
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Public, with the caller attached when a key is sent
		r.Group(func(r chi.Router) {
			r.Use(OptionalAuthMiddleware(db))

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/today", h.GetToday)
				r.Get("/date/{date}", h.GetDate)
				r.Get("/range", h.GetRange)
				r.Get("/months", h.ListMonths)
				r.Get("/months/{index}", h.GetMonth)
				r.Get("/months/{index}/sacred-days", h.GetMonthSacredDays)
				r.Get("/sacred-day/{date}", h.GetSacredDay)
				r.Get("/lunar/{date}", h.GetLunar)
				r.Get("/season/{date}", h.GetSeason)
				r.Get("/events", h.GetEvents)
				r.Get("/{year}.ics", h.GetICS)
			})

			r.Get("/wisdom/today", h.GetWisdomToday)
			r.Get("/posts", h.ListPosts)
			r.Get("/articles", h.ListArticles)
			r.Get("/articles/{slug}", h.GetArticle)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(db, log))

			r.Get("/me", h.GetCurrentUser)
			r.Get("/me/keys", h.ListMyAPIKeys)
			r.Delete("/me/keys/{id}", h.RevokeMyAPIKey)

			r.Get("/events", h.ListEvents)
			r.Post("/events", h.CreateEvent)
			r.Get("/events/{id}", h.GetEvent)
			r.Put("/events/{id}", h.UpdateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)

			r.Post("/posts", h.CreatePost)
			r.Delete("/posts/{id}", h.DeletePost)
			r.Post("/posts/{id}/like", h.LikePost)

			r.Post("/articles", h.CreateArticle)
			r.Put("/articles/{slug}", h.UpdateArticle)
			r.Delete("/articles/{slug}", h.DeleteArticle)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnlyMiddleware(cfg, log))

			r.Post("/users", h.CreateUser)
			r.Post("/users/{id}/keys", h.CreateAPIKey)
			r.Put("/users/{id}/role", h.SetUserRole)
			r.Post("/wisdom", h.CreateWisdom)
		})
	})

	return r
}
