// internal/app/features/parent/routes.go
package parent

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/parent. Every route requires the parent role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleParent))

	r.Get("/children", h.ServeChildren)
	r.Get("/children/{id}/progress", h.ServeChildProgress)
	r.Get("/children/{id}/report", h.ServeChildReport)
	return r
}
