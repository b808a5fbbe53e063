// internal/app/features/teacher/classes.go
package teacher

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type classRequest struct {
	Name        string `json:"name" validate:"required,max=120" label:"Sınıf adı"`
	Description string `json:"description" validate:"max=2000" label:"Açıklama"`
	Subject     string `json:"subject" validate:"max=60" label:"Ders"`
}

type memberRequest struct {
	UserID string `json:"userId" validate:"required,objectid" label:"Kullanıcı"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required" label:"Durum"`
}

// classDetail is a class with its enrolled students resolved.
type classDetail struct {
	models.Class
	Students []models.User `json:"students"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /classes, POST /classes                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListClasses(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	classes, err := h.Classes.ListForTeacher(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: list classes", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

func (h *Handler) ServeCreateClass(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in classRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Classes.Create(ctx, models.Class{
		Name:        in.Name,
		Description: htmlsanitize.PlainText(in.Description),
		Subject:     in.Subject,
		TeacherID:   uid,
	})
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: create class", err)
		return
	}
	h.Log.Info("class created", zap.String("class_id", c.ID.Hex()), zap.String("teacher_id", uid.Hex()))
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"class": c})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/PUT /classes/{id}, PATCH /classes/{id}/active                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGetClass(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, false)
	if !ok {
		return
	}
	students, err := h.Users.ListByIDs(ctx, c.StudentIDs)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: class students", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"class": classDetail{Class: *c, Students: students}})
}

func (h *Handler) ServeUpdateClass(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in classRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, true)
	if !ok {
		return
	}
	if err := h.Classes.Update(ctx, c.ID, in.Name, htmlsanitize.PlainText(in.Description), in.Subject); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: update class", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

func (h *Handler) ServeSetClassActive(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in activeRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, true)
	if !ok {
		return
	}
	if err := h.Classes.SetActive(ctx, c.ID, *in.Active); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: set class active", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Enrollment and co-teachers                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeAddStudent enrolls a student the teacher may work with.
func (h *Handler) ServeAddStudent(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in memberRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, false)
	if !ok {
		return
	}
	st, ok := h.requireUser(ctx, w, r, in.UserID, models.RoleStudent)
	if !ok {
		return
	}
	if err := h.Classes.AddStudent(ctx, c.ID, st.ID); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: add student", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

func (h *Handler) ServeRemoveStudent(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, false)
	if !ok {
		return
	}
	sid, ok := shared.RequireID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.Classes.RemoveStudent(ctx, c.ID, sid); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: remove student", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

// ServeAddCoTeacher adds a co-teacher. Only the primary teacher may do this
// and a class holds at most models.MaxCoTeachers.
func (h *Handler) ServeAddCoTeacher(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in memberRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, true)
	if !ok {
		return
	}
	t, ok := h.requireUser(ctx, w, r, in.UserID, models.RoleTeacher)
	if !ok {
		return
	}
	if err := h.Classes.AddCoTeacher(ctx, c.ID, t.ID); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: add co-teacher", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

func (h *Handler) ServeRemoveCoTeacher(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, ok := h.loadClass(ctx, w, r, uid, true)
	if !ok {
		return
	}
	tid, ok := shared.RequireID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.Classes.RemoveCoTeacher(ctx, c.ID, tid); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: remove co-teacher", err)
		return
	}
	h.writeClass(ctx, w, r, c.ID)
}

// requireUser loads an active user with role, answering 400 otherwise.
func (h *Handler) requireUser(ctx context.Context, w http.ResponseWriter, r *http.Request, hexID, role string) (*models.User, bool) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgInvalidID)
		return nil, false
	}
	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.WriteError(w, http.StatusNotFound, "Kullanıcı bulunamadı.")
		return nil, false
	}
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: load user", err)
		return nil, false
	}
	if u.Role != role || !u.IsActive {
		msg := "Kullanıcı bir öğrenci değil."
		if role == models.RoleTeacher {
			msg = "Kullanıcı bir öğretmen değil."
		}
		if !u.IsActive {
			msg = "Kullanıcı hesabı aktif değil."
		}
		jsonutil.WriteError(w, http.StatusBadRequest, msg)
		return nil, false
	}
	return u, true
}

func (h *Handler) writeClass(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	c, err := h.Classes.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: reload class", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"class": c})
}
