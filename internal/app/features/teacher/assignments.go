// internal/app/features/teacher/assignments.go
package teacher

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type attachmentRequest struct {
	Name        string `json:"name" validate:"required,max=200" label:"Dosya adı"`
	URL         string `json:"url" validate:"required,url" label:"Bağlantı"`
	ContentType string `json:"contentType" validate:"max=100" label:"Dosya türü"`
	Size        int64  `json:"size" validate:"gte=0" label:"Boyut"`
}

type gradingRequest struct {
	LatePolicy     string `json:"latePolicy" validate:"omitempty,oneof=accept penalty reject" label:"Geç teslim politikası"`
	PenaltyPercent int    `json:"penaltyPercent" validate:"gte=0,lte=100" label:"Ceza yüzdesi"`
	MaxAttempts    int    `json:"maxAttempts" validate:"gte=0,lte=20" label:"Teslim hakkı"`
	MaxGrade       int    `json:"maxGrade" validate:"gte=0,lte=1000" label:"En yüksek not"`
}

type assignmentRequest struct {
	Title           string              `json:"title" validate:"required,max=200" label:"Başlık"`
	Description     string              `json:"description" validate:"max=10000" label:"Açıklama"`
	Subject         string              `json:"subject" validate:"max=60" label:"Ders"`
	Type            string              `json:"type" validate:"omitempty,oneof=individual class" label:"Ödev türü"`
	ClassID         string              `json:"classId" validate:"omitempty,objectid" label:"Sınıf"`
	StudentID       string              `json:"studentId" validate:"omitempty,objectid" label:"Öğrenci"`
	DueDate         time.Time           `json:"dueDate" label:"Teslim tarihi"`
	PublishDate     *time.Time          `json:"publishDate" label:"Yayın tarihi"`
	CloseDate       *time.Time          `json:"closeDate" label:"Kapanış tarihi"`
	Attachments     []attachmentRequest `json:"attachments" validate:"max=20,dive" label:"Ekler"`
	Grading         gradingRequest      `json:"grading"`
	Category        string              `json:"category" validate:"max=60" label:"Kategori"`
	Priority        string              `json:"priority" validate:"omitempty,oneof=low medium high" label:"Öncelik"`
	SuccessCriteria string              `json:"successCriteria" validate:"max=2000" label:"Başarı ölçütü"`
	Progress        int                 `json:"progress" validate:"gte=0,lte=100" label:"İlerleme"`
}

func (in assignmentRequest) toModel(teacherID primitive.ObjectID) models.Assignment {
	a := models.Assignment{
		Title:       in.Title,
		Description: htmlsanitize.PlainText(in.Description),
		Subject:     in.Subject,
		Type:        in.Type,
		TeacherID:   teacherID,
		DueDate:     in.DueDate.UTC(),
		PublishDate: utcPtr(in.PublishDate),
		CloseDate:   utcPtr(in.CloseDate),
		Grading: models.GradingPolicy{
			LatePolicy:     in.Grading.LatePolicy,
			PenaltyPercent: in.Grading.PenaltyPercent,
			MaxAttempts:    in.Grading.MaxAttempts,
			MaxGrade:       in.Grading.MaxGrade,
		},
		Category:        in.Category,
		Priority:        in.Priority,
		SuccessCriteria: htmlsanitize.PlainText(in.SuccessCriteria),
		Progress:        in.Progress,
	}
	if id, err := primitive.ObjectIDFromHex(in.ClassID); err == nil {
		a.ClassID = &id
	}
	if id, err := primitive.ObjectIDFromHex(in.StudentID); err == nil {
		a.StudentID = &id
	}
	for _, at := range in.Attachments {
		a.Attachments = append(a.Attachments, models.Attachment{
			ID:          uuid.NewString(),
			Name:        at.Name,
			URL:         at.URL,
			ContentType: at.ContentType,
			Size:        at.Size,
		})
	}
	return a
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

type gradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required" label:"Not"`
	Feedback string   `json:"feedback" validate:"max=5000" label:"Geri bildirim"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /assignments, POST /assignments                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListAssignments(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Assignments.ListForTeacher(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: list assignments", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// ServeCreateAssignment creates work for one student or a whole class and
// notifies the students when it is already published.
func (h *Handler) ServeCreateAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in assignmentRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	a := in.toModel(uid)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var recipients []primitive.ObjectID
	switch {
	case a.Type == models.AssignmentClass && a.ClassID != nil:
		c, err := h.Classes.GetByID(ctx, *a.ClassID)
		if err != nil {
			shared.StoreError(w, r, h.Log, "teacher: assignment class", err)
			return
		}
		if !c.HasTeacher(uid) {
			jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
			return
		}
		recipients = c.StudentIDs
	case a.Type == models.AssignmentIndividual && a.StudentID != nil:
		if !h.requireStudent(ctx, w, r, uid, *a.StudentID) {
			return
		}
		recipients = []primitive.ObjectID{*a.StudentID}
	}

	created, err := h.Assignments.Create(ctx, a)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: create assignment", err)
		return
	}
	h.Log.Info("assignment created",
		zap.String("assignment_id", created.ID.Hex()),
		zap.String("type", created.Type),
		zap.Int("recipients", len(recipients)))

	if created.IsPublished(time.Now().UTC()) {
		h.Notify.AssignmentCreated(ctx, created, recipients)
	}
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"assignment": created})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/PUT/DELETE /assignments/{id}                                             |
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
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"assignment": a})
}

func (h *Handler) ServeUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in assignmentRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, ok := h.loadAssignment(ctx, w, r, uid)
	if !ok {
		return
	}
	a := in.toModel(uid)
	a.ID = cur.ID
	if err := h.Assignments.Update(ctx, uid, a); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: update assignment", err)
		return
	}
	fresh, err := h.Assignments.GetByID(ctx, cur.ID)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: reload assignment", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"assignment": fresh})
}

// ServeDeleteAssignment removes the assignment and its submissions.
func (h *Handler) ServeDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, ok := h.loadAssignment(ctx, w, r, uid)
	if !ok {
		return
	}
	n, err := h.Assignments.Delete(ctx, uid, a.ID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: delete assignment", err)
		return
	}
	if n == 0 {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return
	}
	removed, err := h.Submissions.DeleteForAssignment(ctx, a.ID)
	if err != nil {
		h.Log.Warn("submissions left behind after assignment delete",
			zap.String("assignment_id", a.ID.Hex()),
			zap.Error(err))
	}
	h.Log.Info("assignment deleted",
		zap.String("assignment_id", a.ID.Hex()),
		zap.Int64("submissions", removed))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Submissions and grading                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListSubmissions(w http.ResponseWriter, r *http.Request) {
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
	subs, err := h.Submissions.ListForAssignment(ctx, a.ID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: list submissions", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// ServeGrade grades a submission. A late submission under the penalty policy
// has the penalty applied to the stored grade.
func (h *Handler) ServeGrade(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	subID, ok := shared.RequireID(w, r, "submissionID")
	if !ok {
		return
	}
	var in gradeRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadAssignment(ctx, w, r, uid)
	if !ok {
		return
	}
	sub, err := h.Submissions.Grade(ctx, a, subID, *in.Grade, htmlsanitize.PlainText(in.Feedback), uid, time.Now().UTC())
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: grade submission", err)
		return
	}
	h.Log.Info("submission graded",
		zap.String("submission_id", sub.ID.Hex()),
		zap.Bool("late", sub.IsLate))

	h.Notify.AssignmentGraded(ctx, a, sub)
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"submission": sub})
}
