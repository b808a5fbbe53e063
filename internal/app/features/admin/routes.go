// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/admin. Every route requires the admin role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Get("/teachers", h.ServeListTeachers)
	r.Post("/teachers", h.ServeCreateTeacher)
	r.Patch("/teachers/{id}/active", h.ServeSetTeacherActive)
	r.Get("/teachers/{id}/logins", h.ServeTeacherLogins)
	r.Get("/teachers/{id}/subscription", h.ServeGetSubscription)
	r.Post("/teachers/{id}/subscription", h.ServeActivateSubscription)
	r.Delete("/teachers/{id}/subscription", h.ServeCancelSubscription)

	r.Get("/free-slots", h.ServeListFreeSlots)
	r.Post("/free-slots", h.ServeClaimFreeSlot)
	r.Delete("/free-slots/{id}", h.ServeReleaseFreeSlot)

	r.Get("/discounts", h.ServeListDiscounts)
	r.Post("/discounts", h.ServeCreateDiscount)
	r.Delete("/discounts/{id}", h.ServeDeactivateDiscount)
	return r
}
