// internal/app/features/reports/public.go
package reports

import (
	"context"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServePublic handles GET /api/public/reports/{token}. No session is
// needed; the token is the credential. ?format=pdf returns the document.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Render())
	defer cancel()

	rep, err := h.Reports.GetByToken(ctx, token)
	if err != nil {
		shared.StoreError(w, r, h.Log, "reports: load by token", err)
		return
	}
	d, err := h.Generator.Build(ctx, savedRequest(rep))
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}

	if query.Get(r, "format") != "pdf" {
		jsonutil.WriteJSON(w, http.StatusOK, savedView{Report: *rep, Data: d})
		return
	}
	pdf, err := h.Generator.RenderData(ctx, d)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: render public", err)
		return
	}
	h.Log.Info("public report downloaded", zap.String("report_id", rep.ID.Hex()))
	shared.WritePDF(w, fileName(rep.StudentID, d.GeneratedAt), pdf)
}
