// internal/app/features/teacher/routes.go
package teacher

import (
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/teacher. Every route requires the teacher role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleTeacher))

	r.Get("/classes", h.ServeListClasses)
	r.Post("/classes", h.ServeCreateClass)
	r.Get("/classes/{id}", h.ServeGetClass)
	r.Put("/classes/{id}", h.ServeUpdateClass)
	r.Patch("/classes/{id}/active", h.ServeSetClassActive)
	r.Post("/classes/{id}/students", h.ServeAddStudent)
	r.Delete("/classes/{id}/students/{userID}", h.ServeRemoveStudent)
	r.Post("/classes/{id}/co-teachers", h.ServeAddCoTeacher)
	r.Delete("/classes/{id}/co-teachers/{userID}", h.ServeRemoveCoTeacher)

	r.Get("/students", h.ServeListStudents)
	r.Post("/students", h.ServeCreateStudent)
	r.Post("/students/import", h.ServeImportStudents)
	r.Patch("/students/{id}/active", h.ServeSetStudentActive)
	r.Post("/students/{id}/parents", h.ServeLinkParent)

	r.Get("/assignments", h.ServeListAssignments)
	r.Post("/assignments", h.ServeCreateAssignment)
	r.Get("/assignments/{id}", h.ServeGetAssignment)
	r.Put("/assignments/{id}", h.ServeUpdateAssignment)
	r.Delete("/assignments/{id}", h.ServeDeleteAssignment)
	r.Get("/assignments/{id}/submissions", h.ServeListSubmissions)
	r.Post("/assignments/{id}/submissions/{submissionID}/grade", h.ServeGrade)

	r.Get("/goals", h.ServeListGoals)
	r.Post("/goals", h.ServeCreateGoal)
	r.Put("/goals/{id}", h.ServeUpdateGoal)
	r.Patch("/goals/{id}/progress", h.ServeGoalProgress)
	r.Delete("/goals/{id}", h.ServeDeleteGoal)

	return r
}
