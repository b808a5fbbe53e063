// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/auth. Login is public; /me needs a session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.ServeLogin)
	r.With(sm.RequireSignedIn).Get("/me", h.ServeMe)
	return r
}
