package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

func SetupRoutes(h *Handlers, wsHandler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/google", h.GoogleLogin)
	r.Post("/api/auth/admin", h.AdminLogin)
	r.Post("/api/auth/demo", h.DemoLogin)
	r.Get("/api/health", h.Health)
	r.Get("/ws", wsHandler)

	// The admin and player frontends are served from a separate origin.
	return cors.AllowAll().Handler(r)
}
