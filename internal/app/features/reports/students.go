// internal/app/features/reports/students.go
package reports

import (
	"context"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /students/{id}/pdf?from=&to=&teacherId=&title=                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStudentPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Render())
	defer cancel()

	sid, ok := h.requireStudent(ctx, w, r)
	if !ok {
		return
	}
	req, ok := h.requestFor(ctx, w, r, sid)
	if !ok {
		return
	}

	pdf, renderer, d, err := h.Generator.Render(ctx, req)
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}
	h.Log.Info("report downloaded",
		zap.String("student_id", sid.Hex()),
		zap.String("teacher_id", req.TeacherID.Hex()),
		zap.String("renderer", renderer),
		zap.Strings("partial", d.Partial))
	shared.WritePDF(w, fileName(sid, d.GeneratedAt), pdf)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /students/{id}/data                                                      |
| The aggregate a PDF would be rendered from, as JSON.                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStudentData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sid, ok := h.requireStudent(ctx, w, r)
	if !ok {
		return
	}
	req, ok := h.requestFor(ctx, w, r, sid)
	if !ok {
		return
	}
	d, err := h.Generator.Build(ctx, req)
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /students/{id}/saved                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStudentSaved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sid, ok := h.requireStudent(ctx, w, r)
	if !ok {
		return
	}
	list, err := h.Reports.ListForStudent(ctx, sid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: list saved", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"reports": list})
}
