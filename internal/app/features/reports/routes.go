// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/reports. Who may see a student is decided per
// request by reportpolicy; saving and sharing are for teachers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/students/{id}/pdf", h.ServeStudentPDF)
	r.Get("/students/{id}/data", h.ServeStudentData)
	r.Get("/students/{id}/csv", h.ServeStudentCSV)
	r.Get("/students/{id}/saved", h.ServeStudentSaved)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireRole(models.RoleTeacher))
		rr.Post("/", h.ServeSave)
		rr.Patch("/{id}/public", h.ServeSetPublic)
	})
	return r
}

// PublicRoutes mounts under /api/public/reports without a session.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServePublic)
	return r
}
