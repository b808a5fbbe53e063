// internal/app/features/teacher/goals.go
package teacher

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	goalstore "github.com/dalemusser/coachhub/internal/app/store/goals"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type goalRequest struct {
	StudentID       string     `json:"studentId" validate:"omitempty,objectid" label:"Öğrenci"`
	Title           string     `json:"title" validate:"required,max=200" label:"Başlık"`
	Description     string     `json:"description" validate:"max=5000" label:"Açıklama"`
	Category        string     `json:"category" validate:"max=60" label:"Kategori"`
	Priority        string     `json:"priority" validate:"omitempty,oneof=low medium high" label:"Öncelik"`
	SuccessCriteria string     `json:"successCriteria" validate:"max=2000" label:"Başarı ölçütü"`
	AssignmentIDs   []string   `json:"assignmentIds" validate:"max=50,dive,objectid" label:"Ödevler"`
	NotifyParent    bool       `json:"notifyParent"`
	TargetDate      *time.Time `json:"targetDate" label:"Hedef tarihi"`
}

type progressRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled" label:"Durum"`
	Progress *int    `json:"progress" validate:"omitempty,gte=0,lte=100" label:"İlerleme"`
}

func (in goalRequest) toModel(teacherID primitive.ObjectID) models.Goal {
	g := models.Goal{
		TeacherID:       teacherID,
		Title:           in.Title,
		Description:     htmlsanitize.PlainText(in.Description),
		Category:        in.Category,
		Priority:        in.Priority,
		SuccessCriteria: htmlsanitize.PlainText(in.SuccessCriteria),
		NotifyParent:    in.NotifyParent,
		TargetDate:      utcPtr(in.TargetDate),
	}
	for _, hex := range in.AssignmentIDs {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			g.AssignmentIDs = append(g.AssignmentIDs, id)
		}
	}
	return g
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /goals?status=, POST /goals                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListGoals(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	status := query.Get(r, "status")
	if status != "" && !models.IsValidGoalStatus(status) {
		jsonutil.WriteError(w, http.StatusBadRequest, "Hedef durumu geçersiz.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	goals, err := h.Goals.ListForTeacher(ctx, uid, status)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: list goals", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *Handler) ServeCreateGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in goalRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	sid, err := primitive.ObjectIDFromHex(in.StudentID)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Öğrenci alanı zorunludur.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.requireStudent(ctx, w, r, uid, sid) {
		return
	}
	g := in.toModel(uid)
	g.StudentID = sid
	created, err := h.Goals.Create(ctx, g)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: create goal", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{"goal": created})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT/DELETE /goals/{id}, PATCH /goals/{id}/progress                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdateGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in goalRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, ok := h.loadGoal(ctx, w, r, uid)
	if !ok {
		return
	}
	g := in.toModel(uid)
	g.ID = cur.ID
	if err := h.Goals.Update(ctx, uid, g); err != nil {
		shared.StoreError(w, r, h.Log, "teacher: update goal", err)
		return
	}
	fresh, err := h.Goals.GetByID(ctx, cur.ID)
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: reload goal", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"goal": fresh})
}

// ServeGoalProgress changes status and/or progress. Completing a goal that
// asks for it notifies the student's parents.
func (h *Handler) ServeGoalProgress(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in progressRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	if in.Status == nil && in.Progress == nil {
		jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, ok := h.loadGoal(ctx, w, r, uid)
	if !ok {
		return
	}
	g, justCompleted, err := h.Goals.UpdateProgress(ctx, cur.ID, goalstore.ProgressUpdate{Status: in.Status, Progress: in.Progress}, time.Now().UTC())
	if err != nil {
		shared.StoreError(w, r, h.Log, "teacher: goal progress", err)
		return
	}
	if justCompleted {
		h.Log.Info("goal completed", zap.String("goal_id", g.ID.Hex()))
		h.Notify.GoalCompleted(ctx, g)
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"goal": g})
}

func (h *Handler) ServeDeleteGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.loadGoal(ctx, w, r, uid)
	if !ok {
		return
	}
	n, err := h.Goals.Delete(ctx, uid, g.ID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "teacher: delete goal", err)
		return
	}
	if n == 0 {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
