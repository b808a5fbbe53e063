// internal/app/features/student/routes.go
package student

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/student. Every route requires the student role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleStudent))

	r.Get("/assignments", h.ServeListAssignments)
	r.Get("/assignments/{id}", h.ServeGetAssignment)
	r.Post("/assignments/{id}/submit", h.ServeSubmit)
	r.Get("/goals", h.ServeListGoals)
	r.Get("/progress", h.ServeProgress)
	return r
}
