package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeSource struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	// userErrs are returned, in order, before users is consulted.
	userErrs  []error
	userCalls int

	class       *models.Class
	assignments []models.Assignment
	submissions []models.AssignmentSubmission
	goals       []models.Goal

	classErr, assignmentsErr, submissionsErr, goalsErr error
}

func (f *fakeSource) User(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if len(f.userErrs) > 0 {
		err := f.userErrs[0]
		f.userErrs = f.userErrs[1:]
		return nil, err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func (f *fakeSource) ClassFor(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Class, error) {
	return f.class, f.classErr
}

func (f *fakeSource) Assignments(context.Context, primitive.ObjectID, time.Time, time.Time) ([]models.Assignment, error) {
	return f.assignments, f.assignmentsErr
}

func (f *fakeSource) Submissions(context.Context, primitive.ObjectID, time.Time, time.Time) ([]models.AssignmentSubmission, error) {
	return f.submissions, f.submissionsErr
}

func (f *fakeSource) Goals(context.Context, primitive.ObjectID, time.Time, time.Time) ([]models.Goal, error) {
	return f.goals, f.goalsErr
}

func newPair(src *fakeSource) (student, teacher *models.User) {
	student = &models.User{ID: primitive.NewObjectID(), FullName: "Ayşe Yılmaz", Role: models.RoleStudent, IsActive: true}
	teacher = &models.User{ID: primitive.NewObjectID(), FullName: "Mehmet Öztürk", Role: models.RoleTeacher, IsActive: true}
	if src.users == nil {
		src.users = map[primitive.ObjectID]*models.User{}
	}
	src.users[student.ID] = student
	src.users[teacher.ID] = teacher
	return student, teacher
}

func fastFetcher(src report.Source) *report.Fetcher {
	return &report.Fetcher{Source: src, Retry: report.DefaultRetry}
}

func requestFor(student, teacher *models.User) report.Request {
	return report.Request{
		StudentID: student.ID,
		TeacherID: teacher.ID,
		From:      day(2025, time.January, 1),
		To:        day(2025, time.June, 30),
	}
}

func TestFetch_Success(t *testing.T) {
	src := &fakeSource{
		class:       &models.Class{Name: "9-A"},
		assignments: []models.Assignment{assignment("", day(2025, time.March, 1))},
		goals:       []models.Goal{{Title: "Okuma"}},
	}
	student, teacher := newPair(src)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := fastFetcher(src).Fetch(ctx, requestFor(student, teacher))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if b.Student.ID != student.ID || b.Teacher.ID != teacher.ID {
		t.Error("wrong identities returned")
	}
	if b.Class == nil || b.Class.Name != "9-A" {
		t.Errorf("Class: got %+v", b.Class)
	}
	if len(b.Assignments) != 1 || len(b.Goals) != 1 {
		t.Errorf("got %d assignments and %d goals", len(b.Assignments), len(b.Goals))
	}
	if len(b.Partial) != 0 {
		t.Errorf("Partial: got %v, want none", b.Partial)
	}
}

func TestFetch_IdentityErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(student, teacher *models.User, src *fakeSource)
		wantRole string
		wantKind string
		wantMsg  string
	}{
		{
			name:     "student missing",
			mutate:   func(s, _ *models.User, src *fakeSource) { delete(src.users, s.ID) },
			wantRole: models.RoleStudent, wantKind: report.KindNotFound, wantMsg: "Öğrenci bulunamadı.",
		},
		{
			name:     "student wrong role",
			mutate:   func(s, _ *models.User, _ *fakeSource) { s.Role = models.RoleParent },
			wantRole: models.RoleStudent, wantKind: report.KindWrongRole,
		},
		{
			name:     "student inactive",
			mutate:   func(s, _ *models.User, _ *fakeSource) { s.IsActive = false },
			wantRole: models.RoleStudent, wantKind: report.KindInactive,
		},
		{
			name:     "teacher missing",
			mutate:   func(_, tc *models.User, src *fakeSource) { delete(src.users, tc.ID) },
			wantRole: models.RoleTeacher, wantKind: report.KindNotFound, wantMsg: "Öğretmen bulunamadı.",
		},
		{
			name:     "teacher is a student",
			mutate:   func(_, tc *models.User, _ *fakeSource) { tc.Role = models.RoleStudent },
			wantRole: models.RoleTeacher, wantKind: report.KindWrongRole,
		},
	}
	for _, tt := range tests {
		src := &fakeSource{}
		student, teacher := newPair(src)
		tt.mutate(student, teacher, src)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		_, err := fastFetcher(src).Fetch(ctx, requestFor(student, teacher))
		cancel()

		var ie *report.IdentityError
		if !errors.As(err, &ie) {
			t.Errorf("%s: got %v, want *IdentityError", tt.name, err)
			continue
		}
		if ie.Role != tt.wantRole || ie.Kind != tt.wantKind {
			t.Errorf("%s: got role=%s kind=%s, want %s/%s", tt.name, ie.Role, ie.Kind, tt.wantRole, tt.wantKind)
		}
		if tt.wantMsg != "" && ie.Message != tt.wantMsg {
			t.Errorf("%s: message got %q, want %q", tt.name, ie.Message, tt.wantMsg)
		}
		if ie.Message == "" {
			t.Errorf("%s: empty message", tt.name)
		}
	}
}

func TestFetch_IdentityNotRetried(t *testing.T) {
	src := &fakeSource{}
	student, teacher := newPair(src)
	student.IsActive = false
	teacher.IsActive = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := fastFetcher(src).Fetch(ctx, requestFor(student, teacher)); !report.IsIdentityError(err) {
		t.Fatalf("got %v, want identity error", err)
	}
	if src.userCalls != 2 {
		t.Errorf("user lookups: got %d, want 2 (one per identity)", src.userCalls)
	}
}

func TestFetch_TransientIdentityRetried(t *testing.T) {
	src := &fakeSource{userErrs: []error{errors.New("connection reset"), errors.New("connection reset")}}
	student, teacher := newPair(src)
	f := &report.Fetcher{Source: src}
	f.Retry.Attempts = 3
	f.Retry.Backoff = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := f.Fetch(ctx, requestFor(student, teacher))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if b.Student == nil || b.Teacher == nil {
		t.Fatal("identities missing after retry")
	}
	if src.userCalls != 4 {
		t.Errorf("user lookups: got %d, want 4", src.userCalls)
	}
}

func TestFetch_TransientIdentityExhausted(t *testing.T) {
	boom := errors.New("server selection timeout")
	src := &fakeSource{userErrs: []error{boom, boom, boom, boom, boom, boom}}
	student, teacher := newPair(src)
	f := &report.Fetcher{Source: src}
	f.Retry.Attempts = 3
	f.Retry.Backoff = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Fetch(ctx, requestFor(student, teacher))
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestFetch_PeripheralFailuresDegrade(t *testing.T) {
	src := &fakeSource{
		assignments:    []models.Assignment{assignment("", day(2025, time.March, 1))},
		classErr:       errors.New("class lookup failed"),
		submissionsErr: errors.New("submissions failed"),
		goalsErr:       errors.New("goals failed"),
	}
	student, teacher := newPair(src)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := fastFetcher(src).Fetch(ctx, requestFor(student, teacher))
	if err != nil {
		t.Fatalf("Fetch should tolerate peripheral failures, got %v", err)
	}
	if len(b.Assignments) != 1 {
		t.Errorf("Assignments: got %d, want 1", len(b.Assignments))
	}
	if b.Class != nil || b.Submissions != nil || b.Goals != nil {
		t.Error("failed parts should be empty")
	}
	want := map[string]bool{report.PartClass: true, report.PartSubmissions: true, report.PartGoals: true}
	if len(b.Partial) != len(want) {
		t.Fatalf("Partial: got %v", b.Partial)
	}
	for _, p := range b.Partial {
		if !want[p] {
			t.Errorf("unexpected partial part %q", p)
		}
	}
}
