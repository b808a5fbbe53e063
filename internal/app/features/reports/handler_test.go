package reports_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/reports"
	"github.com/dalemusser/coachhub/internal/app/report"
	notificationstore "github.com/dalemusser/coachhub/internal/app/store/notifications"
	"github.com/dalemusser/coachhub/internal/app/system/indexes"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.uber.org/zap"
)

type stubRenderer struct{ last *report.Data }

func (s *stubRenderer) Name() string { return "stub" }

func (s *stubRenderer) Render(_ context.Context, d *report.Data) ([]byte, error) {
	s.last = d
	return []byte("%PDF-stub"), nil
}

type env struct {
	h      *reports.Handler
	fx     *testutil.Fixtures
	ctx    context.Context
	tch    models.User
	st     models.User
	parent models.User
	pdf    *stubRenderer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	logger := zap.NewNop()
	fx := testutil.NewFixtures(t, db)
	tch := fx.CreateTeacher(ctx, "Selin Hoca")
	st := fx.CreateStudent(ctx, "Elif Kaya")
	fx.CreateClass(ctx, "6-C", tch.ID, st.ID)

	now := time.Now().UTC()
	a := fx.CreateAssignment(ctx, "Kesirler", tch.ID, st.ID, testutil.AssignmentOpts{Subject: "Matematik", DueDate: now.Add(-48 * time.Hour)})
	fx.CreateSubmission(ctx, a, st.ID, models.SubmissionGraded, testutil.Float(85), now.Add(-72*time.Hour))
	fx.CreateAssignment(ctx, "Okuma", tch.ID, st.ID, testutil.AssignmentOpts{Subject: "Türkçe", DueDate: now.Add(-24 * time.Hour)})

	stub := &stubRenderer{}
	gen := report.NewGenerator(report.Config{
		Source:   report.NewMongoSource(db),
		Renderer: stub,
		Logger:   logger,
	})
	return &env{
		h:      reports.NewHandler(db, gen, notify.New(db, logger), logger),
		fx:     fx,
		ctx:    ctx,
		tch:    tch,
		st:     st,
		parent: fx.CreateParent(ctx, "Ayşe Kaya", st.ID),
		pdf:    stub,
	}
}

func as(u models.User) testutil.TestUser {
	return testutil.AsTestUser(u.ID, u.FullName, u.Role)
}

func req(t *testing.T, method, target string, body any, user testutil.TestUser, params ...string) *http.Request {
	t.Helper()
	return testutil.WithChiURLParams(testutil.NewAuthenticatedRequest(t, method, target, body, user), params...)
}

func TestStudentPDF_Teacher(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeStudentPDF(rec, req(t, "GET", "/api/reports/students/x/pdf", nil, as(e.tch), "id", e.st.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not the rendered document")
	}
	if e.pdf.last == nil || e.pdf.last.Teacher.ID != e.tch.ID.Hex() {
		t.Fatalf("teacher: got %+v", e.pdf.last)
	}
	if e.pdf.last.Metrics.TotalAssignments != 2 || e.pdf.last.Metrics.Submitted != 1 {
		t.Errorf("metrics: got %+v", e.pdf.last.Metrics)
	}
}

func TestStudentPDF_Errors(t *testing.T) {
	e := newEnv(t)
	stranger := e.fx.CreateTeacher(e.ctx, "Başka Hoca")
	loner := e.fx.CreateStudent(e.ctx, "Öğretmensiz")

	tests := []struct {
		name   string
		user   testutil.TestUser
		id     string
		target string
		want   int
	}{
		{"stranger teacher", as(stranger), e.st.ID.Hex(), "/pdf", http.StatusForbidden},
		{"bad student id", as(e.tch), "nope", "/pdf", http.StatusBadRequest},
		{"bad teacher id", testutil.AdminUser(), e.st.ID.Hex(), "/pdf?teacherId=nope", http.StatusBadRequest},
		{"teacher is not a teacher", testutil.AdminUser(), e.st.ID.Hex(), "/pdf?teacherId=" + e.parent.ID.Hex(), http.StatusBadRequest},
		{"student is not a student", testutil.AdminUser(), e.parent.ID.Hex(), "/pdf?teacherId=" + e.tch.ID.Hex(), http.StatusBadRequest},
		{"no teacher to attribute", testutil.AdminUser(), loner.ID.Hex(), "/pdf", http.StatusNotFound},
		{"reversed range", as(e.tch), e.st.ID.Hex(), "/pdf?from=2025-06-10&to=2025-06-01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.h.ServeStudentPDF(rec, req(t, "GET", "/api/reports/students/x"+tt.target, nil, tt.user, "id", tt.id))
			testutil.AssertStatus(t, rec, tt.want)
		})
	}
}

func TestStudentData_ParentUsesDefaultTeacher(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeStudentData(rec, req(t, "GET", "/api/reports/students/x/data", nil, as(e.parent), "id", e.st.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var d report.Data
	testutil.DecodeJSON(t, rec, &d)
	if d.Teacher.ID != e.tch.ID.Hex() {
		t.Errorf("teacher: got %q, want %q", d.Teacher.ID, e.tch.ID.Hex())
	}
	if d.Class == nil || d.Class.Name != "6-C" {
		t.Errorf("class: got %+v", d.Class)
	}
	if d.Metrics.AverageGrade != 85 {
		t.Errorf("AverageGrade: got %d, want 85", d.Metrics.AverageGrade)
	}
}

func TestStudentData_TeacherOverride(t *testing.T) {
	e := newEnv(t)
	stranger := e.fx.CreateTeacher(e.ctx, "Başka Hoca")

	tests := []struct {
		name    string
		user    testutil.TestUser
		teacher string
		want    int
	}{
		{"parent names unrelated teacher", as(e.parent), stranger.ID.Hex(), http.StatusForbidden},
		{"teacher names unrelated teacher", as(e.tch), stranger.ID.Hex(), http.StatusForbidden},
		{"parent names class teacher", as(e.parent), e.tch.ID.Hex(), http.StatusOK},
		{"admin names any teacher", testutil.AdminUser(), stranger.ID.Hex(), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.h.ServeStudentData(rec, req(t, "GET", "/api/reports/students/x/data?teacherId="+tt.teacher, nil, tt.user, "id", e.st.ID.Hex()))
			testutil.AssertStatus(t, rec, tt.want)
			if tt.want != http.StatusOK {
				return
			}
			var d report.Data
			testutil.DecodeJSON(t, rec, &d)
			if d.Teacher.ID != tt.teacher {
				t.Errorf("teacher: got %q, want %q", d.Teacher.ID, tt.teacher)
			}
		})
	}
}

func TestStudentCSV(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeStudentCSV(rec, req(t, "GET", "/api/reports/students/x/csv", nil, as(e.st), "id", e.st.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusOK)

	body := bytes.TrimPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF})
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(rows))
	}
	if rows[0][0] != "baslik" {
		t.Errorf("header: got %v", rows[0])
	}
}

func TestSaveShareAndPublic(t *testing.T) {
	e := newEnv(t)

	// save privately
	rec := httptest.NewRecorder()
	e.h.ServeSave(rec, req(t, "POST", "/api/reports", map[string]any{
		"studentId": e.st.ID.Hex(),
		"title":     "Dönem Raporu",
	}, as(e.tch)))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var saved struct {
		Report models.Report `json:"report"`
	}
	testutil.DecodeJSON(t, rec, &saved)
	if saved.Report.ShareToken != nil || saved.Report.Summary.AverageGrade != 85 {
		t.Fatalf("saved: got %+v", saved.Report)
	}
	rid := saved.Report.ID.Hex()

	// another teacher cannot share it
	stranger := e.fx.CreateTeacher(e.ctx, "Başka Hoca")
	rec = httptest.NewRecorder()
	e.h.ServeSetPublic(rec, req(t, "PATCH", "/api/reports/x/public", map[string]bool{"isPublic": true}, as(stranger), "id", rid))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	// owner shares; parent is told
	rec = httptest.NewRecorder()
	e.h.ServeSetPublic(rec, req(t, "PATCH", "/api/reports/x/public", map[string]bool{"isPublic": true}, as(e.tch), "id", rid))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var shared struct {
		Report models.Report `json:"report"`
	}
	testutil.DecodeJSON(t, rec, &shared)
	if shared.Report.ShareToken == nil {
		t.Fatal("sharing should assign a token")
	}
	token := *shared.Report.ShareToken

	notes, err := notificationstore.New(e.fx.DB()).ListForUser(e.ctx, e.parent.ID, false, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(notes) != 1 || notes[0].Type != models.NotifyReportShared {
		t.Errorf("parent notifications: got %+v", notes)
	}

	// public link works without a session
	rec = httptest.NewRecorder()
	e.h.ServePublic(rec, testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/public/reports/x?format=pdf", nil), "token", token))
	testutil.AssertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}

	// unshared links stop resolving
	rec = httptest.NewRecorder()
	e.h.ServeSetPublic(rec, req(t, "PATCH", "/api/reports/x/public", map[string]bool{"isPublic": false}, as(e.tch), "id", rid))
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	e.h.ServePublic(rec, testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/public/reports/x", nil), "token", token))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestSave_Forbidden(t *testing.T) {
	e := newEnv(t)
	stranger := e.fx.CreateTeacher(e.ctx, "Başka Hoca")

	rec := httptest.NewRecorder()
	e.h.ServeSave(rec, req(t, "POST", "/api/reports", map[string]any{"studentId": e.st.ID.Hex()}, as(stranger)))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = httptest.NewRecorder()
	e.h.ServeSave(rec, req(t, "POST", "/api/reports", map[string]any{"studentId": "nope"}, as(e.tch)))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestGetSaved(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeSave(rec, req(t, "POST", "/api/reports", map[string]any{"studentId": e.st.ID.Hex()}, as(e.tch)))
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var saved struct {
		Report models.Report `json:"report"`
	}
	testutil.DecodeJSON(t, rec, &saved)

	rec = httptest.NewRecorder()
	e.h.ServeGet(rec, req(t, "GET", "/api/reports/x", nil, as(e.parent), "id", saved.Report.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusOK)

	other := e.fx.CreateStudent(e.ctx, "Başka Öğrenci")
	rec = httptest.NewRecorder()
	e.h.ServeGet(rec, req(t, "GET", "/api/reports/x", nil, as(other), "id", saved.Report.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	rec = httptest.NewRecorder()
	e.h.ServeStudentSaved(rec, req(t, "GET", "/api/reports/students/x/saved", nil, as(e.tch), "id", e.st.ID.Hex()))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list struct {
		Reports []models.Report `json:"reports"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list.Reports) != 1 {
		t.Errorf("saved reports: got %d, want 1", len(list.Reports))
	}
}
