// internal/app/features/reports/saved.go
package reports

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/report"
	reportstore "github.com/dalemusser/coachhub/internal/app/store/reports"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type saveRequest struct {
	StudentID string `json:"studentId" validate:"required,objectid" label:"Öğrenci"`
	From      string `json:"from" label:"Başlangıç"`
	To        string `json:"to" label:"Bitiş"`
	Title     string `json:"title" validate:"max=200" label:"Başlık"`
	IsPublic  bool   `json:"isPublic"`
}

type publicRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required" label:"Paylaşım"`
}

// savedView is a saved report with the aggregate rebuilt from live data.
type savedView struct {
	Report models.Report `json:"report"`
	Data   *report.Data  `json:"data"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /  (teacher)                                                            |
| Builds the report once to validate it and stores its headline numbers.       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSave(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	var in saveRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	from, to, err := shared.ParseRange(in.From, in.To)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	sid, _ := primitive.ObjectIDFromHex(in.StudentID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	allowed, err := h.Access.TeacherCanView(ctx, uid, sid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: access check", err)
		return
	}
	if !allowed {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return
	}

	d, err := h.Generator.Build(ctx, report.Request{
		StudentID: sid,
		TeacherID: uid,
		From:      from,
		To:        to,
		Title:     normalize.Name(in.Title),
	})
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}

	rep, err := h.Reports.Save(ctx, models.Report{
		StudentID: sid,
		TeacherID: uid,
		Title:     d.Title,
		From:      d.From,
		To:        d.To,
		Summary:   d.Summary(),
		IsPublic:  in.IsPublic,
	})
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: save", err)
		return
	}
	h.Notify.ReportShared(ctx, rep)
	h.Log.Info("report saved",
		zap.String("report_id", rep.ID.Hex()),
		zap.String("student_id", sid.Hex()),
		zap.Bool("public", rep.IsPublic))
	jsonutil.WriteJSON(w, http.StatusCreated, savedView{Report: rep, Data: d})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /{id}                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "reports: load", err)
		return
	}
	allowed, err := h.Access.CanViewStudent(ctx, r, rep.StudentID)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: access check", err)
		return
	}
	if !allowed {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return
	}

	d, err := h.Generator.Build(ctx, savedRequest(rep))
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, savedView{Report: *rep, Data: d})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /{id}/public  (teacher, owner only)                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSetPublic(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	var in publicRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rep, err := h.Reports.SetPublic(ctx, uid, id, *in.IsPublic)
	if errors.Is(err, reportstore.ErrNotOwner) {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return
	}
	if err != nil {
		shared.StoreError(w, r, h.Log, "reports: set public", err)
		return
	}
	h.Notify.ReportShared(ctx, rep)
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"report": rep})
}
