// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/notifications for any signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/unread-count", h.ServeUnreadCount)
	r.Post("/read-all", h.ServeMarkAllRead)
	r.Post("/{id}/read", h.ServeMarkRead)
	return r
}
