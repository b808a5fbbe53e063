// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/authz"
	"github.com/dalemusser/coachhub/internal/app/system/inputval"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDParam parses the chi URL parameter name as an ObjectID.
func IDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// RequireID parses the URL parameter name and writes a 400 when it is not an
// ObjectID.
func RequireID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, ok := IDParam(r, name)
	if !ok {
		jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgInvalidID)
	}
	return id, ok
}

// CurrentUserID returns the signed-in user's ID and writes a 401 when
// there is none.
func CurrentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.WriteError(w, http.StatusUnauthorized, jsonutil.MsgUnauthorized)
	}
	return uid, ok
}

// Bind decodes the JSON body into dst and validates it. On failure it writes
// a 400 with the first problem and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := jsonutil.Decode(r, dst); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, jsonutil.MsgBadRequest)
		return false
	}
	if res := inputval.Validate(dst); res.HasErrors() {
		jsonutil.WriteError(w, http.StatusBadRequest, res.First())
		return false
	}
	return true
}

// ErrBadDate is returned by ParseDate for unrecognised input.
var ErrBadDate = errors.New("Geçersiz tarih.")

// ParseDate accepts "2006-01-02" (midnight UTC) or RFC 3339. Empty input
// yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrBadDate
}

// DateRange reads the from/to query parameters with ParseRange.
func DateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	return ParseRange(q.Get("from"), q.Get("to"))
}

// ParseRange parses a from/to pair. A bare date in to covers that whole day.
func ParseRange(fromS, toS string) (from, to time.Time, err error) {
	if from, err = ParseDate(fromS); err != nil {
		return
	}
	raw := strings.TrimSpace(toS)
	if to, err = ParseDate(raw); err != nil {
		return
	}
	if len(raw) == len("2006-01-02") {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return
}
