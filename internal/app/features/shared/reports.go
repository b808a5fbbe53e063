package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// ReportError writes the response for a failed report build. Missing
// people are 404, wrong role or inactive accounts and bad ranges are 400.
func ReportError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ie *report.IdentityError
	switch {
	case errors.As(err, &ie):
		status := http.StatusBadRequest
		if ie.Kind == report.KindNotFound {
			status = http.StatusNotFound
		}
		jsonutil.WriteError(w, status, ie.Message)
	case errors.Is(err, report.ErrBadRange):
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		jsonutil.ServerError(w, r, log, "report", err)
	}
}

// WritePDF sends pdf as an attachment named name.pdf.
func WritePDF(w http.ResponseWriter, name string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
