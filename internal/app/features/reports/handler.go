// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/policy/reportpolicy"
	"github.com/dalemusser/coachhub/internal/app/report"
	reportstore "github.com/dalemusser/coachhub/internal/app/store/reports"
	"github.com/dalemusser/coachhub/internal/app/system/authz"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves report generation, saved reports and public share links.
//
// Saved reports keep only their parameters and a headline snapshot; the
// full aggregate is rebuilt from live data whenever one is read.
type Handler struct {
	Reports   *reportstore.Store
	Access    *reportpolicy.Checker
	Source    *report.MongoSource
	Generator *report.Generator
	Notify    *notify.Notifier
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, gen *report.Generator, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Reports:   reportstore.New(db),
		Access:    reportpolicy.New(db),
		Source:    report.NewMongoSource(db),
		Generator: gen,
		Notify:    notifier,
		Log:       logger,
	}
}

const msgNoTeacher = "Öğrencinin bağlı olduğu bir öğretmen bulunamadı."

// requireStudent parses the student ID and checks the signed-in user may
// see them.
func (h *Handler) requireStudent(ctx context.Context, w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	sid, ok := shared.RequireID(w, r, "id")
	if !ok {
		return sid, false
	}
	allowed, err := h.Access.CanViewStudent(ctx, r, sid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "reports: access check", err)
		return sid, false
	}
	if !allowed {
		jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
		return sid, false
	}
	return sid, true
}

// requestFor builds the report request for sid from the query string. The
// teacher is, in order: ?teacherId, the signed-in teacher, or the student's
// default teacher. An explicit ?teacherId must be one who can see sid,
// unless the caller is an admin.
func (h *Handler) requestFor(ctx context.Context, w http.ResponseWriter, r *http.Request, sid primitive.ObjectID) (report.Request, bool) {
	req := report.Request{StudentID: sid, Title: query.Get(r, "title")}

	var err error
	if req.From, req.To, err = shared.DateRange(r); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
		return req, false
	}

	if hex := query.Get(r, "teacherId"); hex != "" {
		if req.TeacherID, err = primitive.ObjectIDFromHex(hex); err != nil {
			jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgInvalidID)
			return req, false
		}
		if role, _, _, _ := authz.UserCtx(r); role != models.RoleAdmin {
			ok, err := h.Access.TeacherCanView(ctx, req.TeacherID, sid)
			if err != nil {
				jsonutil.ServerError(w, r, h.Log, "reports: teacher access check", err)
				return req, false
			}
			if !ok {
				jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
				return req, false
			}
		}
		return req, true
	}
	if role, _, uid, _ := authz.UserCtx(r); role == models.RoleTeacher {
		req.TeacherID = uid
		return req, true
	}

	req.TeacherID, err = h.Source.TeacherOf(ctx, sid)
	switch {
	case err == mongo.ErrNoDocuments:
		jsonutil.WriteError(w, http.StatusNotFound, msgNoTeacher)
		return req, false
	case err != nil:
		jsonutil.ServerError(w, r, h.Log, "reports: resolve teacher", err)
		return req, false
	}
	return req, true
}

// savedRequest rebuilds the pipeline request a saved report was made from.
func savedRequest(rep *models.Report) report.Request {
	return report.Request{
		StudentID: rep.StudentID,
		TeacherID: rep.TeacherID,
		From:      rep.From,
		To:        rep.To,
		Title:     rep.Title,
	}
}

func fileName(sid primitive.ObjectID, now time.Time) string {
	return "rapor-" + sid.Hex() + "-" + now.Format("20060102")
}
