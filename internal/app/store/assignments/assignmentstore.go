package assignmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrTitleRequired   = errors.New("assignment title is required")
	ErrDueDateRequired = errors.New("assignment due date is required")
	ErrBadType         = errors.New(`assignment type must be "individual"|"class"`)
	ErrClassRequired   = errors.New("class assignments require a class")
	ErrStudentRequired = errors.New("individual assignments require a student")
	ErrBadLatePolicy   = errors.New(`late policy must be "accept"|"penalty"|"reject"`)
	ErrBadPenalty      = errors.New("penalty percent must be between 0 and 100")
	ErrBadDates        = errors.New("close date must not be before the due date")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Validate applies grading defaults and checks the type/target invariant.
func Validate(a *models.Assignment) error {
	a.Title = normalize.Name(a.Title)
	if a.Title == "" {
		return ErrTitleRequired
	}
	if a.DueDate.IsZero() {
		return ErrDueDateRequired
	}
	switch a.Type {
	case models.AssignmentClass:
		if a.ClassID == nil {
			return ErrClassRequired
		}
		a.StudentID = nil
	case models.AssignmentIndividual:
		if a.StudentID == nil {
			return ErrStudentRequired
		}
		a.ClassID = nil
	default:
		return ErrBadType
	}

	g := &a.Grading
	if g.LatePolicy == "" {
		g.LatePolicy = models.LateAccept
	}
	switch g.LatePolicy {
	case models.LateAccept, models.LatePenalty, models.LateReject:
	default:
		return ErrBadLatePolicy
	}
	if g.PenaltyPercent < 0 || g.PenaltyPercent > 100 {
		return ErrBadPenalty
	}
	if g.MaxAttempts < 1 {
		g.MaxAttempts = 1
	}
	if g.MaxGrade <= 0 {
		g.MaxGrade = 100
	}
	if a.CloseDate != nil && a.CloseDate.Before(a.DueDate) {
		return ErrBadDates
	}
	return nil
}

// Create validates and inserts an assignment.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if err := Validate(&a); err != nil {
		return models.Assignment{}, err
	}
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// GetByID loads an assignment by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListForTeacher returns assignments created by teacherID, newest first.
func (s *Store) ListForTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"teacher_id": teacherID}, opts)
}

func studentFilter(studentID primitive.ObjectID, classIDs []primitive.ObjectID) bson.M {
	or := []bson.M{{"type": models.AssignmentIndividual, "student_id": studentID}}
	if len(classIDs) > 0 {
		or = append(or, bson.M{"type": models.AssignmentClass, "class_id": bson.M{"$in": classIDs}})
	}
	return bson.M{"$or": or}
}

// ListForStudent returns the individual assignments of studentID plus the
// class assignments of classIDs that are published at now, by due date.
func (s *Store) ListForStudent(ctx context.Context, studentID primitive.ObjectID, classIDs []primitive.ObjectID, now time.Time) ([]models.Assignment, error) {
	filter := bson.M{"$and": []bson.M{
		studentFilter(studentID, classIDs),
		{"$or": []bson.M{
			{"publish_date": bson.M{"$exists": false}},
			{"publish_date": nil},
			{"publish_date": bson.M{"$lte": now}},
		}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return s.find(ctx, filter, opts)
}

// ListForReport returns the assignments of studentID (individual, plus class
// assignments of classIDs) whose due date falls within [from, to].
func (s *Store) ListForReport(ctx context.Context, studentID primitive.ObjectID, classIDs []primitive.ObjectID, from, to time.Time) ([]models.Assignment, error) {
	filter := studentFilter(studentID, classIDs)
	filter["due_date"] = bson.M{"$gte": from, "$lte": to}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: -1}})
	return s.find(ctx, filter, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Assignment, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of an assignment owned by teacherID.
// Type and target cannot change. Returns mongo.ErrNoDocuments if nothing matched.
func (s *Store) Update(ctx context.Context, teacherID primitive.ObjectID, a models.Assignment) error {
	cur, err := s.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Type, a.ClassID, a.StudentID = cur.Type, cur.ClassID, cur.StudentID
	if err := Validate(&a); err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": a.ID, "teacher_id": teacherID}, bson.M{"$set": bson.M{
		"title":            a.Title,
		"description":      a.Description,
		"subject":          a.Subject,
		"due_date":         a.DueDate,
		"publish_date":     a.PublishDate,
		"close_date":       a.CloseDate,
		"attachments":      a.Attachments,
		"grading":          a.Grading,
		"category":         a.Category,
		"priority":         a.Priority,
		"success_criteria": a.SuccessCriteria,
		"progress":         a.Progress,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an assignment owned by teacherID.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, teacherID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "teacher_id": teacherID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
