// internal/app/features/teacher/handler.go
package teacher

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/policy/reportpolicy"
	assignmentstore "github.com/dalemusser/coachhub/internal/app/store/assignments"
	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	goalstore "github.com/dalemusser/coachhub/internal/app/store/goals"
	submissionstore "github.com/dalemusser/coachhub/internal/app/store/submissions"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the teacher API: classes, students, assignments, grading
// and goals.
type Handler struct {
	Users       *userstore.Store
	Classes     *classstore.Store
	Assignments *assignmentstore.Store
	Submissions *submissionstore.Store
	Goals       *goalstore.Store
	Access      *reportpolicy.Checker
	Notify      *notify.Notifier
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       userstore.New(db),
		Classes:     classstore.New(db),
		Assignments: assignmentstore.New(db),
		Submissions: submissionstore.New(db),
		Goals:       goalstore.New(db),
		Access:      reportpolicy.New(db),
		Notify:      notifier,
		Log:         logger,
	}
}

// requireStudent checks that the signed-in teacher may work with studentID.
// It writes 404 for unknown students and 403 for students of other teachers.
func (h *Handler) requireStudent(ctx context.Context, w http.ResponseWriter, r *http.Request, teacherID, studentID primitive.ObjectID) bool {
	ok, err := h.Access.TeacherCanView(ctx, teacherID, studentID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: student access", err)
		return false
	}
	if !ok {
		if _, err := h.Users.GetByID(ctx, studentID); errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
			return false
		}
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return false
	}
	return true
}

// loadClass loads a class the teacher teaches. With primaryOnly, co-teachers
// are refused.
func (h *Handler) loadClass(ctx context.Context, w http.ResponseWriter, r *http.Request, teacherID primitive.ObjectID, primaryOnly bool) (*models.Class, bool) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return nil, false
	}
	c, err := h.Classes.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: load class", err)
		return nil, false
	}
	if !c.HasTeacher(teacherID) || (primaryOnly && c.TeacherID != teacherID) {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return nil, false
	}
	return c, true
}

// loadAssignment loads an assignment owned by teacherID.
func (h *Handler) loadAssignment(ctx context.Context, w http.ResponseWriter, r *http.Request, teacherID primitive.ObjectID) (*models.Assignment, bool) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return nil, false
	}
	a, err := h.Assignments.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: load assignment", err)
		return nil, false
	}
	if a.TeacherID != teacherID {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return nil, false
	}
	return a, true
}

// loadGoal loads a goal set by teacherID.
func (h *Handler) loadGoal(ctx context.Context, w http.ResponseWriter, r *http.Request, teacherID primitive.ObjectID) (*models.Goal, bool) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return nil, false
	}
	g, err := h.Goals.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: load goal", err)
		return nil, false
	}
	if g.TeacherID != teacherID {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return nil, false
	}
	return g, true
}
