package teacher_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
)

func (e *env) csvReq(target, body string) *http.Request {
	r := httptest.NewRequest("POST", target, strings.NewReader(body))
	r.Header.Set("Content-Type", "text/csv")
	return testutil.WithUser(r, e.as)
}

type importBody struct {
	Created []models.User `json:"created"`
	Skipped []struct {
		Line  int    `json:"line"`
		Email string `json:"email"`
	} `json:"skipped"`
}

func TestImportStudents_EnrollsAndSkipsExisting(t *testing.T) {
	e := newEnv(t)
	class := e.fx.CreateClass(e.ctx, "7-B", e.tch.ID)

	rec := httptest.NewRecorder()
	e.h.ServeCreateStudent(rec, e.req(t, "POST", "/", map[string]string{"fullName": "Var Olan", "email": "var@example.com"}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	roster := "Ad Soyad,E-posta,Sınıf düzeyi\nAli Yılmaz,ali@example.com,7\nVar Olan,VAR@example.com,7\nEce Demir,ece@example.com,7\n"
	rec = httptest.NewRecorder()
	e.h.ServeImportStudents(rec, e.csvReq("/students/import?classId="+class.ID.Hex(), roster))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var body importBody
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Created) != 2 {
		t.Fatalf("created: got %d, want 2", len(body.Created))
	}
	if len(body.Skipped) != 1 || body.Skipped[0].Email != "var@example.com" || body.Skipped[0].Line != 3 {
		t.Errorf("skipped: got %+v", body.Skipped)
	}
	for _, u := range body.Created {
		if u.Role != models.RoleStudent || u.CreatedBy == nil || *u.CreatedBy != e.tch.ID {
			t.Errorf("created student %q: role %q createdBy %v", u.FullName, u.Role, u.CreatedBy)
		}
	}

	got, err := classstore.New(e.fx.DB()).GetByID(e.ctx, class.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.StudentIDs) != 2 {
		t.Errorf("enrolled: got %d, want 2", len(got.StudentIDs))
	}
}

func TestImportStudents_Multipart(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("csv", "liste.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("Ali Yılmaz;ali@example.com\n"))
	mw.Close()

	r := httptest.NewRequest("POST", "/students/import", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.h.ServeImportStudents(rec, testutil.WithUser(r, e.as))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var body importBody
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Created) != 1 || body.Created[0].Email != "ali@example.com" {
		t.Errorf("created: got %+v", body.Created)
	}
}

func TestImportStudents_Rejected(t *testing.T) {
	e := newEnv(t)
	other := e.fx.CreateTeacher(e.ctx, "Başka Öğretmen")
	foreign := e.fx.CreateClass(e.ctx, "8-A", other.ID)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"invalid line", "/students/import", "Ali Yılmaz,ali@example.com\nEce Demir,gecersiz\n", http.StatusBadRequest},
		{"empty file", "/students/import", "", http.StatusBadRequest},
		{"bad class id", "/students/import?classId=xyz", "Ali,ali@example.com\n", http.StatusBadRequest},
		{"other teacher's class", "/students/import?classId=" + foreign.ID.Hex(), "Ali,ali@example.com\n", http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.h.ServeImportStudents(rec, e.csvReq(tt.target, tt.body))
		if rec.Code != tt.want {
			t.Errorf("%s: status got %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}

	// nothing from the rejected file was created
	rec := httptest.NewRecorder()
	e.h.ServeListStudents(rec, e.req(t, "GET", "/", nil))
	var list struct {
		Students []models.User `json:"students"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list.Students) != 0 {
		t.Errorf("students after rejected imports: got %d, want 0", len(list.Students))
	}
}
