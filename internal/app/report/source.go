package report

import (
	"context"
	"time"

	assignmentstore "github.com/dalemusser/coachhub/internal/app/store/assignments"
	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	goalstore "github.com/dalemusser/coachhub/internal/app/store/goals"
	submissionstore "github.com/dalemusser/coachhub/internal/app/store/submissions"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Source supplies the entities a report is built from.
//
// User returns mongo.ErrNoDocuments for an unknown ID. ClassFor returns
// (nil, nil) when the student shares no class with the teacher.
type Source interface {
	User(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ClassFor(ctx context.Context, studentID, teacherID primitive.ObjectID) (*models.Class, error)
	Assignments(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.Assignment, error)
	Submissions(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.AssignmentSubmission, error)
	Goals(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.Goal, error)
}

// MongoSource reads report entities through the stores.
type MongoSource struct {
	users       *userstore.Store
	classes     *classstore.Store
	assignments *assignmentstore.Store
	submissions *submissionstore.Store
	goals       *goalstore.Store
}

// NewMongoSource builds a Source over db.
func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{
		users:       userstore.New(db),
		classes:     classstore.New(db),
		assignments: assignmentstore.New(db),
		submissions: submissionstore.New(db),
		goals:       goalstore.New(db),
	}
}

func (s *MongoSource) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *MongoSource) ClassFor(ctx context.Context, studentID, teacherID primitive.ObjectID) (*models.Class, error) {
	c, err := s.classes.FindForStudentAndTeacher(ctx, studentID, teacherID)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return c, err
}

// Assignments returns the student's individual assignments plus the class
// assignments of every class the student is enrolled in, due within range.
func (s *MongoSource) Assignments(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.Assignment, error) {
	classes, err := s.classes.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return s.assignments.ListForReport(ctx, studentID, ids, from, to)
}

func (s *MongoSource) Submissions(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.AssignmentSubmission, error) {
	return s.submissions.ListForStudentUntil(ctx, studentID, to)
}

func (s *MongoSource) Goals(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.Goal, error) {
	return s.goals.ListForReport(ctx, studentID, from, to)
}

// TeacherOf picks the teacher a student's reports default to: the teacher
// who created the account, else the primary teacher of the student's first
// class. It returns mongo.ErrNoDocuments when there is none.
func (s *MongoSource) TeacherOf(ctx context.Context, studentID primitive.ObjectID) (primitive.ObjectID, error) {
	st, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if st.CreatedBy != nil {
		t, err := s.users.GetByID(ctx, *st.CreatedBy)
		if err == nil && t.Role == models.RoleTeacher && t.IsActive {
			return t.ID, nil
		}
		if err != nil && err != mongo.ErrNoDocuments {
			return primitive.NilObjectID, err
		}
	}
	classes, err := s.classes.ListForStudent(ctx, studentID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(classes) == 0 {
		return primitive.NilObjectID, mongo.ErrNoDocuments
	}
	return classes[0].TeacherID, nil
}
