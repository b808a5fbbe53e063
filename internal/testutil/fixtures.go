package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data directly in the
// database, bypassing store validation.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert %s fixture: %v", coll, err)
	}
}

// CreateUser creates an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      strings.ToLower(strings.ReplaceAll(fullName, " ", ".")) + "." + primitive.NewObjectID().Hex()[18:] + "@test.com",
		AuthMethod: "password",
		Role:       role,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateTeacher creates an active teacher.
func (f *Fixtures) CreateTeacher(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleTeacher)
}

// CreateStudent creates an active student.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleStudent)
}

// CreateParent creates an active parent linked to the given children.
func (f *Fixtures) CreateParent(ctx context.Context, fullName string, children ...primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      "parent." + primitive.NewObjectID().Hex() + "@test.com",
		AuthMethod: "password",
		Role:       models.RoleParent,
		IsActive:   true,
		ChildIDs:   children,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateClass creates an active class owned by teacherID with the given students.
func (f *Fixtures) CreateClass(ctx context.Context, name string, teacherID primitive.ObjectID, students ...primitive.ObjectID) models.Class {
	f.t.Helper()

	if students == nil {
		students = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	c := models.Class{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		TeacherID:    teacherID,
		CoTeacherIDs: []primitive.ObjectID{},
		StudentIDs:   students,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "classes", c)
	return c
}

// AssignmentOpts customises CreateAssignment. Zero values get defaults.
type AssignmentOpts struct {
	Subject   string
	DueDate   time.Time
	ClassID   *primitive.ObjectID
	Grading   models.GradingPolicy
	CloseDate *time.Time
	CreatedAt time.Time
}

// CreateAssignment creates an individual assignment for studentID, or a
// class assignment when opts.ClassID is set.
func (f *Fixtures) CreateAssignment(ctx context.Context, title string, teacherID, studentID primitive.ObjectID, opts AssignmentOpts) models.Assignment {
	f.t.Helper()

	now := time.Now().UTC()
	if opts.DueDate.IsZero() {
		opts.DueDate = now.Add(7 * 24 * time.Hour)
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = now
	}
	if opts.Grading.LatePolicy == "" {
		opts.Grading = models.GradingPolicy{LatePolicy: models.LateAccept, MaxAttempts: 1, MaxGrade: 100}
	}

	a := models.Assignment{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Subject:   opts.Subject,
		TeacherID: teacherID,
		DueDate:   opts.DueDate,
		CloseDate: opts.CloseDate,
		Grading:   opts.Grading,
		CreatedAt: opts.CreatedAt,
		UpdatedAt: opts.CreatedAt,
	}
	if opts.ClassID != nil {
		a.Type = models.AssignmentClass
		a.ClassID = opts.ClassID
	} else {
		a.Type = models.AssignmentIndividual
		sid := studentID
		a.StudentID = &sid
	}
	f.insert(ctx, "assignments", a)
	return a
}

// CreateSubmission creates a submission with the given status. A non-nil
// grade is stored as both grade and raw grade.
func (f *Fixtures) CreateSubmission(ctx context.Context, a models.Assignment, studentID primitive.ObjectID, status string, grade *float64, submittedAt time.Time) models.AssignmentSubmission {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.AssignmentSubmission{
		ID:           primitive.NewObjectID(),
		AssignmentID: a.ID,
		StudentID:    studentID,
		TeacherID:    a.TeacherID,
		Status:       status,
		Attempts:     1,
		Grade:        grade,
		RawGrade:     grade,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status != models.SubmissionNotStarted {
		at := submittedAt
		s.SubmittedAt = &at
	}
	if status == models.SubmissionGraded {
		s.GradedAt = &now
	}
	f.insert(ctx, "assignment_submissions", s)
	return s
}

// CreateGoal creates a goal with the given status. Completed goals get
// CompletedAt set to now.
func (f *Fixtures) CreateGoal(ctx context.Context, title string, teacherID, studentID primitive.ObjectID, status string) models.Goal {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Goal{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		TeacherID: teacherID,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.GoalCompleted {
		g.Progress = 100
		g.CompletedAt = &now
	}
	f.insert(ctx, "goals", g)
	return g
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
