// internal/app/features/teacher/students.go
package teacher

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type studentRequest struct {
	FullName   string `json:"fullName" validate:"required,max=120" label:"Ad Soyad"`
	Email      string `json:"email" validate:"required,email" label:"E-posta"`
	Password   string `json:"password" validate:"omitempty,min=8" label:"Şifre"`
	GradeLevel string `json:"gradeLevel" validate:"max=40" label:"Sınıf düzeyi"`
	School     string `json:"school" validate:"max=120" label:"Okul"`
	ClassID    string `json:"classId" validate:"omitempty,objectid" label:"Sınıf"`
}

type parentRequest struct {
	FullName string `json:"fullName" validate:"required,max=120" label:"Ad Soyad"`
	Email    string `json:"email" validate:"required,email" label:"E-posta"`
	Password string `json:"password" validate:"omitempty,min=8" label:"Şifre"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /students                                                                |
| Students the teacher created plus everyone enrolled in their classes.        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListStudents(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	own, err := h.Users.ListCreatedBy(ctx, uid, models.RoleStudent)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: own students", err)
		return
	}
	classes, err := h.Classes.ListForTeacher(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: classes for students", err)
		return
	}

	seen := make(map[primitive.ObjectID]bool, len(own))
	for _, u := range own {
		seen[u.ID] = true
	}
	var enrolled []primitive.ObjectID
	for _, c := range classes {
		for _, id := range c.StudentIDs {
			if !seen[id] {
				seen[id] = true
				enrolled = append(enrolled, id)
			}
		}
	}
	others, err := h.Users.ListByIDs(ctx, enrolled)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: enrolled students", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"students": append(own, others...)})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /students                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreateStudent(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in studentRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var classID primitive.ObjectID
	if in.ClassID != "" {
		classID, _ = primitive.ObjectIDFromHex(in.ClassID)
		c, err := h.Classes.GetByID(ctx, classID)
		if err != nil {
			shared.StoreError(w, r, h.Log, "teacher: student class", err)
			return
		}
		if !c.HasTeacher(uid) {
			jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
			return
		}
	}

	st, err := h.Users.Create(ctx, models.User{
		FullName:   in.FullName,
		Email:      in.Email,
		Role:       models.RoleStudent,
		GradeLevel: in.GradeLevel,
		School:     in.School,
		CreatedBy:  &uid,
	}, in.Password)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: create student", err)
		return
	}
	if !classID.IsZero() {
		if err := h.Classes.AddStudent(ctx, classID, st.ID); err != nil {
			shared.StoreError(w, r, h.Log, "teacher: enroll new student", err)
			return
		}
	}

	h.Log.Info("student created",
		zap.String("student_id", st.ID.Hex()),
		zap.String("teacher_id", uid.Hex()))
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"student": st})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /students/{id}/active                                                  |
| Only the teacher who created the account may deactivate it.                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSetStudentActive(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	sid, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	var in activeRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Users.GetByID(ctx, sid)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: load student", err)
		return
	}
	if st.Role != models.RoleStudent || st.CreatedBy == nil || *st.CreatedBy != uid {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return
	}
	if err := h.Users.SetActive(ctx, sid, *in.Active); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: set student active", err)
		return
	}
	st.IsActive = *in.Active
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"student": st})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /students/{id}/parents                                                  |
| Links an existing parent account by email or creates one.                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLinkParent(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	sid, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	var in parentRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.requireStudent(ctx, w, r, uid, sid) {
		return
	}

	parent, err := h.Users.GetByEmail(ctx, in.Email)
	status := http.StatusOK
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		created, cerr := h.Users.Create(ctx, models.User{
			FullName:  in.FullName,
			Email:     in.Email,
			Role:      models.RoleParent,
			CreatedBy: &uid,
		}, in.Password)
		if cerr != nil {
			shared.StoreError(w, r, h.Log, "teacher: create parent", cerr)
			return
		}
		parent = &created
		status = http.StatusCreated
	case err != nil:
		jsonutil.ServerError(w, r, h.Log, "teacher: find parent", err)
		return
	}

	if err := h.Users.AddChild(ctx, parent.ID, sid); err != nil {
		if errors.Is(err, userstore.ErrNotParent) {
			jsonutil.WriteError(w, http.StatusConflict, "Bu e-posta bir veli hesabına ait değil.")
			return
		}
		shared.StoreError(w, r, h.Log, "teacher: link parent", err)
		return
	}

	fresh, err := h.Users.GetByID(ctx, parent.ID)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: reload parent", err)
		return
	}
	jsonutil.WriteJSON(w, status, map[string]any{"parent": fresh})
}
