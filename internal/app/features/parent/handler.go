// internal/app/features/parent/handler.go
package parent

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/policy/reportpolicy"
	"github.com/dalemusser/coachhub/internal/app/report"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the parent API.
type Handler struct {
	Users     *userstore.Store
	Access    *reportpolicy.Checker
	Source    *report.MongoSource
	Generator *report.Generator
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, gen *report.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     userstore.New(db),
		Access:    reportpolicy.New(db),
		Source:    report.NewMongoSource(db),
		Generator: gen,
		Log:       logger,
	}
}

// childView is the part of a child's account a parent sees.
type childView struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	GradeLevel string `json:"gradeLevel,omitempty"`
	School     string `json:"school,omitempty"`
	IsActive   bool   `json:"isActive"`
}

// requireChild parses the child ID and checks it is linked to parentID.
// Children of other parents are reported as not found.
func (h *Handler) requireChild(ctx context.Context, w http.ResponseWriter, r *http.Request, parentID primitive.ObjectID) (primitive.ObjectID, bool) {
	sid, ok := shared.RequireID(w, r, "id")
	if !ok {
		return sid, false
	}
	allowed, err := h.Access.ParentCanView(ctx, parentID, sid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "parent: access check", err)
		return sid, false
	}
	if !allowed {
		jsonutil.WriteError(w, http.StatusNotFound, jsonutil.MsgNotFound)
		return sid, false
	}
	return sid, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /children                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChildren(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "parent: load parent", err)
		return
	}
	kids, err := h.Users.ListByIDs(ctx, p.ChildIDs)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "parent: list children", err)
		return
	}

	out := make([]childView, 0, len(kids))
	for _, k := range kids {
		if k.Role != models.RoleStudent {
			continue
		}
		out = append(out, childView{
			ID:         k.ID.Hex(),
			FullName:   k.FullName,
			GradeLevel: k.GradeLevel,
			School:     k.School,
			IsActive:   k.IsActive,
		})
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"children": out})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /children/{id}/progress?from=&to=                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChildProgress(w http.ResponseWriter, r *http.Request) {
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

	sid, ok := h.requireChild(ctx, w, r, uid)
	if !ok {
		return
	}
	p, err := report.Progress(ctx, h.Source, sid, from, to)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "parent: progress", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /children/{id}/report?from=&to=                                          |
| PDF report attributed to the child's teacher.                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeChildReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	from, to, err := shared.DateRange(r)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Render())
	defer cancel()

	sid, ok := h.requireChild(ctx, w, r, uid)
	if !ok {
		return
	}
	tid, err := h.Source.TeacherOf(ctx, sid)
	if err == mongo.ErrNoDocuments {
		jsonutil.WriteError(w, http.StatusNotFound, "Öğrencinin bağlı olduğu bir öğretmen bulunamadı.")
		return
	}
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "parent: resolve teacher", err)
		return
	}

	pdf, renderer, _, err := h.Generator.Render(ctx, report.Request{StudentID: sid, TeacherID: tid, From: from, To: to})
	if err != nil {
		shared.ReportError(w, r, h.Log, err)
		return
	}
	h.Log.Info("parent report downloaded",
		zap.String("parent_id", uid.Hex()),
		zap.String("student_id", sid.Hex()),
		zap.String("renderer", renderer))
	shared.WritePDF(w, "rapor-"+sid.Hex(), pdf)
}
