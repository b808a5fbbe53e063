// internal/app/features/student/handler.go
package student

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/report"
	assignmentstore "github.com/dalemusser/coachhub/internal/app/store/assignments"
	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	goalstore "github.com/dalemusser/coachhub/internal/app/store/goals"
	submissionstore "github.com/dalemusser/coachhub/internal/app/store/submissions"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the student API.
type Handler struct {
	Classes     *classstore.Store
	Assignments *assignmentstore.Store
	Submissions *submissionstore.Store
	Goals       *goalstore.Store
	Source      report.Source
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Classes:     classstore.New(db),
		Assignments: assignmentstore.New(db),
		Submissions: submissionstore.New(db),
		Goals:       goalstore.New(db),
		Source:      report.NewMongoSource(db),
		Log:         logger,
	}
}

// assignmentView is an assignment with the student's own submission, if any.
type assignmentView struct {
	Assignment models.Assignment            `json:"assignment"`
	Submission *models.AssignmentSubmission `json:"submission,omitempty"`
}

type attachmentRequest struct {
	Name        string `json:"name" validate:"required,max=200" label:"Dosya adı"`
	URL         string `json:"url" validate:"required,url" label:"Bağlantı"`
	ContentType string `json:"contentType" validate:"max=100" label:"Dosya türü"`
	Size        int64  `json:"size" validate:"gte=0" label:"Boyut"`
}

type submitRequest struct {
	Content     string              `json:"content" validate:"required_without=Attachments,max=20000" label:"İçerik"`
	Attachments []attachmentRequest `json:"attachments" validate:"max=10,dive" label:"Ekler"`
}

func (h *Handler) classIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	classes, err := h.Classes.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// visible reports whether a is addressed to the student and published.
func visible(a *models.Assignment, studentID primitive.ObjectID, classIDs []primitive.ObjectID, now time.Time) bool {
	if !a.IsPublished(now) {
		return false
	}
	if a.StudentID != nil && *a.StudentID == studentID {
		return true
	}
	if a.ClassID != nil {
		for _, id := range classIDs {
			if id == *a.ClassID {
				return true
			}
		}
	}
	return false
}

// loadAssignment loads an assignment the student can see. Assignments for
// others are reported as not found.
func (h *Handler) loadAssignment(ctx context.Context, w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) (*models.Assignment, bool) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return nil, false
	}
	a, err := h.Assignments.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "student: load assignment", err)
		return nil, false
	}
	classIDs, err := h.classIDs(ctx, studentID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: classes", err)
		return nil, false
	}
	if !visible(a, studentID, classIDs, time.Now().UTC()) {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return nil, false
	}
	return a, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /assignments                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListAssignments(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	classIDs, err := h.classIDs(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: classes", err)
		return
	}
	list, err := h.Assignments.ListForStudent(ctx, uid, classIDs, time.Now().UTC())
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: list assignments", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	subs, err := h.Submissions.ListForStudentAssignments(ctx, uid, ids)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: list submissions", err)
		return
	}
	byAssignment := make(map[primitive.ObjectID]*models.AssignmentSubmission, len(subs))
	for i := range subs {
		byAssignment[subs[i].AssignmentID] = &subs[i]
	}

	out := make([]assignmentView, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentView{Assignment: a, Submission: byAssignment[a.ID]})
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"assignments": out})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /assignments/{id}                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGetAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadAssignment(ctx, w, r, uid)
	if !ok {
		return
	}
	view := assignmentView{Assignment: *a}
	sub, err := h.Submissions.GetForStudent(ctx, a.ID, uid)
	switch {
	case err == nil:
		view.Submission = sub
	case err != mongo.ErrNoDocuments:
		jsonutil.ServerError(w, r, h.Log, "student: load submission", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, view)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /assignments/{id}/submit                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in submitRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadAssignment(ctx, w, r, uid)
	if !ok {
		return
	}

	work := submissionstore.Submission{Content: htmlsanitize.PlainText(in.Content)}
	for _, at := range in.Attachments {
		work.Attachments = append(work.Attachments, models.Attachment{
			ID:          uuid.NewString(),
			Name:        at.Name,
			URL:         at.URL,
			ContentType: at.ContentType,
			Size:        at.Size,
		})
	}

	sub, err := h.Submissions.Submit(ctx, a, uid, work, time.Now().UTC())
	if err != nil {
		shared.StoreError(w, r, h.Log, "student: submit", err)
		return
	}
	h.Log.Info("assignment submitted",
		zap.String("assignment_id", a.ID.Hex()),
		zap.String("student_id", uid.Hex()),
		zap.Int("attempt", sub.Attempts),
		zap.Bool("late", sub.IsLate))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /goals                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListGoals(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	goals, err := h.Goals.ListForStudent(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: list goals", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /progress?from=&to=                                                      |
| The student's own metrics and insights for a range (default 30 days).        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProgress(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	from, to, err := shared.DateRange(r)
	if err == nil {
		from, to, err = report.NormalizeRange(from, to, time.Now().UTC())
	}
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := report.Progress(ctx, h.Source, uid, from, to)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "student: progress", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, p)
}
