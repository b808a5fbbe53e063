// internal/app/features/reports/csv.go
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var csvHeader = []string{"baslik", "ders", "teslim_tarihi", "durum", "not", "en_yuksek_not", "gec"}

// ServeStudentCSV handles GET /students/{id}/csv and streams the report's
// assignment list as CSV.
func (h *Handler) ServeStudentCSV(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, fileName(sid, d.GeneratedAt)))

	// UTF-8 BOM so Excel treats it as Unicode
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	_ = cw.Write(csvHeader)
	for _, a := range d.Assignments {
		_ = cw.Write(csvRow(a))
	}
	h.Log.Info("report CSV exported",
		zap.String("student_id", sid.Hex()),
		zap.Int("rows", len(d.Assignments)))
}

func csvRow(a report.AssignmentItem) []string {
	grade := ""
	if a.Grade != nil {
		grade = strconv.FormatFloat(*a.Grade, 'f', -1, 64)
	}
	late := "hayır"
	if a.IsLate {
		late = "evet"
	}
	return []string{
		a.Title,
		a.Subject,
		a.DueDate.Format("2006-01-02"),
		a.StatusLabel,
		grade,
		strconv.Itoa(a.MaxGrade),
		late,
	}
}
