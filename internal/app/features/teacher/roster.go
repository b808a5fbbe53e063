// internal/app/features/teacher/roster.go
package teacher

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/csvutil"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgRosterMissing  = "CSV dosyası gerekli."
	msgRosterTooLarge = "CSV dosyası çok büyük. En fazla 1 MB olabilir."
	msgRosterTooMany  = "CSV dosyasında en fazla 500 öğrenci olabilir."
	msgRosterInvalid  = "CSV dosyasında hatalı satırlar var. Düzeltip tekrar yükleyin."
	msgRosterExists   = "Bu e-posta ile kayıtlı bir kullanıcı zaten var."
)

type skippedRow struct {
	Line   int    `json:"line"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /students/import?classId=                                               |
| Bulk-creates students from a roster CSV, sent either as the "csv" field of  |
| a multipart form or as a text/csv body. A file with any invalid line is     |
| rejected as a whole; emails already registered are skipped.                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeImportStudents(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "roster import")
	defer cancel()

	var classID primitive.ObjectID
	if hex := query.Get(r, "classId"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgInvalidID)
			return
		}
		c, err := h.Classes.GetByID(ctx, id)
		if err != nil {
			shared.StoreError(w, r, h.Log, "teacher: roster class", err)
			return
		}
		if !c.HasTeacher(uid) {
			jsonutil.WriteError(w, http.StatusForbidden, jsonutil.MsgForbidden)
			return
		}
		classID = id
	}

	body, err := rosterBody(r)
	if err != nil {
		msg := msgRosterMissing
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = msgRosterTooLarge
		}
		jsonutil.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	defer body.Close()

	parsed, err := csvutil.ParseRoster(body, csvutil.DefaultParseOptions())
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, csvutil.ErrTooManyRows):
			jsonutil.WriteError(w, http.StatusBadRequest, msgRosterTooMany)
		case errors.As(err, &tooLarge):
			jsonutil.WriteError(w, http.StatusBadRequest, msgRosterTooLarge)
		default:
			jsonutil.WriteError(w, http.StatusBadRequest, msgRosterMissing)
		}
		return
	}
	if parsed.HasErrors() {
		jsonutil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error": msgRosterInvalid,
			"rows":  parsed.Errors,
		})
		return
	}
	if len(parsed.Rows) == 0 {
		jsonutil.WriteError(w, http.StatusBadRequest, msgRosterMissing)
		return
	}

	created := make([]models.User, 0, len(parsed.Rows))
	skipped := []skippedRow{}
	for _, row := range parsed.Rows {
		st, err := h.Users.Create(ctx, models.User{
			FullName:   row.FullName,
			Email:      row.Email,
			Role:       models.RoleStudent,
			GradeLevel: row.GradeLevel,
			School:     row.School,
			CreatedBy:  &uid,
		}, "")
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			skipped = append(skipped, skippedRow{Line: row.Line, Email: row.Email, Reason: msgRosterExists})
			continue
		}
		if err != nil {
			jsonutil.ServerError(w, r, h.Log, "teacher: roster create", err)
			return
		}
		if !classID.IsZero() {
			if err := h.Classes.AddStudent(ctx, classID, st.ID); err != nil {
				shared.StoreError(w, r, h.Log, "teacher: roster enroll", err)
				return
			}
		}
		created = append(created, st)
	}

	h.Log.Info("roster imported",
		zap.String("teacher_id", uid.Hex()),
		zap.Int("created", len(created)),
		zap.Int("skipped", len(skipped)))
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"created": created,
		"skipped": skipped,
	})
}

// rosterBody returns the uploaded file or the raw request body.
func rosterBody(r *http.Request) (io.ReadCloser, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mt, "multipart/") {
		file, _, err := r.FormFile("csv")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return r.Body, nil
}
