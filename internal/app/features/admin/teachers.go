// internal/app/features/admin/teachers.go
package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type teacherRequest struct {
	FullName string   `json:"fullName" validate:"required,max=120" label:"Ad Soyad"`
	Email    string   `json:"email" validate:"required,email" label:"E-posta"`
	Password string   `json:"password" validate:"required,min=8" label:"Şifre"`
	School   string   `json:"school" validate:"max=120" label:"Okul"`
	Subjects []string `json:"subjects" validate:"max=20,dive,required,max=60" label:"Dersler"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required" label:"Durum"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /teachers?active=true                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListTeachers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.ListByRole(ctx, models.RoleTeacher, query.Get(r, "active") == "true")
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "admin: list teachers", err)
		return
	}
	ids := make([]primitive.ObjectID, len(list))
	for i, u := range list {
		ids[i] = u.ID
	}
	last, err := h.Logins.LastFor(ctx, ids)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "admin: last logins", err)
		return
	}
	lastByHex := make(map[string]time.Time, len(last))
	for id, at := range last {
		lastByHex[id.Hex()] = at
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"teachers": list, "lastLoginAt": lastByHex})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /teachers                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreateTeacher(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in teacherRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:  in.FullName,
		Email:     in.Email,
		Role:      models.RoleTeacher,
		School:    in.School,
		Subjects:  in.Subjects,
		CreatedBy: &uid,
	}, in.Password)
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: create teacher", err)
		return
	}
	h.Log.Info("teacher created",
		zap.String("teacher_id", u.ID.Hex()),
		zap.String("admin_id", uid.Hex()))
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"teacher": u})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /teachers/{id}/active                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSetTeacherActive(w http.ResponseWriter, r *http.Request) {
	var in activeRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.requireTeacher(ctx, w, r)
	if !ok {
		return
	}
	if err := h.Users.SetActive(ctx, u.ID, *in.Active); err != nil {
		shared.StoreError(w, r, h.Log, "admin: set teacher active", err)
		return
	}
	h.Log.Info("teacher active changed",
		zap.String("teacher_id", u.ID.Hex()),
		zap.Bool("active", *in.Active))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"id": u.ID.Hex(), "active": *in.Active})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /teachers/{id}/logins?limit=                                             |
*─────────────────────────────────────────────────────────────────────────────*/

const maxLoginLimit = 100

func (h *Handler) ServeTeacherLogins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.requireTeacher(ctx, w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(query.Get(r, "limit"))
	if limit <= 0 || limit > maxLoginLimit {
		limit = 20
	}
	list, err := h.Logins.ListForUser(ctx, u.ID, int64(limit))
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "admin: teacher logins", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"logins": list})
}
