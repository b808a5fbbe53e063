package submissionstore

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateSubmission is returned when a submission already exists for (assignment, student).
	ErrDuplicateSubmission = errors.New("a submission already exists for this assignment and student")
	ErrNotPublished        = errors.New("assignment is not published yet")
	ErrClosed              = errors.New("assignment is closed")
	ErrLateRejected        = errors.New("late submissions are not accepted")
	ErrNoAttemptsLeft      = errors.New("no submission attempts left")
	ErrAlreadyGraded       = errors.New("submission is already graded")
	ErrNotSubmitted        = errors.New("submission has not been submitted")
	ErrBadGrade            = errors.New("grade is out of range")
	ErrWrongAssignment     = errors.New("submission does not belong to this assignment")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignment_submissions")}
}

// Create inserts a submission. The unique (assignment_id, student_id) index
// turns a second insert into ErrDuplicateSubmission.
func (s *Store) Create(ctx context.Context, sub models.AssignmentSubmission) (models.AssignmentSubmission, error) {
	sub.ID = primitive.NewObjectID()
	if sub.Status == "" {
		sub.Status = models.SubmissionNotStarted
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AssignmentSubmission{}, ErrDuplicateSubmission
		}
		return models.AssignmentSubmission{}, err
	}
	return sub, nil
}

// GetByID loads a submission by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetForStudent loads the submission of studentID for assignmentID.
func (s *Store) GetForStudent(ctx context.Context, assignmentID, studentID primitive.ObjectID) (*models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	if err := s.c.FindOne(ctx, bson.M{"assignment_id": assignmentID, "student_id": studentID}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Submission is what a student hands in.
type Submission struct {
	Content     string
	Attachments []models.Attachment
}

// Submit records a student's work for a.
//
// The first hand-in creates the submission; later ones replace the content
// while attempts remain. Work handed in after the due date is marked late,
// or refused under the reject policy. Nothing is accepted after the close
// date or once the submission is graded.
func (s *Store) Submit(ctx context.Context, a *models.Assignment, studentID primitive.ObjectID, in Submission, now time.Time) (models.AssignmentSubmission, error) {
	if !a.IsPublished(now) {
		return models.AssignmentSubmission{}, ErrNotPublished
	}
	if a.IsClosed(now) {
		return models.AssignmentSubmission{}, ErrClosed
	}
	late := now.After(a.DueDate)
	if late && a.Grading.LatePolicy == models.LateReject {
		return models.AssignmentSubmission{}, ErrLateRejected
	}
	status := models.SubmissionSubmitted
	if late {
		status = models.SubmissionLate
	}
	maxAttempts := a.Grading.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	existing, err := s.GetForStudent(ctx, a.ID, studentID)
	if err == mongo.ErrNoDocuments {
		at := now
		return s.Create(ctx, models.AssignmentSubmission{
			AssignmentID: a.ID,
			StudentID:    studentID,
			TeacherID:    a.TeacherID,
			Status:       status,
			Content:      in.Content,
			Attachments:  in.Attachments,
			Attempts:     1,
			IsLate:       late,
			SubmittedAt:  &at,
		})
	}
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	if existing.Status == models.SubmissionGraded {
		return models.AssignmentSubmission{}, ErrAlreadyGraded
	}
	if existing.Attempts >= maxAttempts {
		return models.AssignmentSubmission{}, ErrNoAttemptsLeft
	}

	// Conditional on the attempt count we read so two concurrent hand-ins
	// cannot both consume the last attempt.
	var out models.AssignmentSubmission
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{
			"_id":      existing.ID,
			"attempts": existing.Attempts,
			"status":   bson.M{"$ne": models.SubmissionGraded},
		},
		bson.M{
			"$set": bson.M{
				"status":       status,
				"content":      in.Content,
				"attachments":  in.Attachments,
				"is_late":      late,
				"submitted_at": now,
				"updated_at":   now,
			},
			"$inc": bson.M{"attempts": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return models.AssignmentSubmission{}, ErrNoAttemptsLeft
	}
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	return out, nil
}

// ApplyLatePenalty returns the grade after the assignment's late penalty,
// rounded to two decimals. Only late submissions under the penalty policy
// are reduced.
func ApplyLatePenalty(raw float64, isLate bool, g models.GradingPolicy) float64 {
	if !isLate || g.LatePolicy != models.LatePenalty || g.PenaltyPercent <= 0 {
		return raw
	}
	v := raw * float64(100-g.PenaltyPercent) / 100
	return math.Round(v*100) / 100
}

// Grade records a grade and feedback for a submitted submission.
func (s *Store) Grade(ctx context.Context, a *models.Assignment, submissionID primitive.ObjectID, raw float64, feedback string, graderID primitive.ObjectID, now time.Time) (models.AssignmentSubmission, error) {
	maxGrade := float64(a.Grading.MaxGrade)
	if maxGrade <= 0 {
		maxGrade = 100
	}
	if raw < 0 || raw > maxGrade || math.IsNaN(raw) {
		return models.AssignmentSubmission{}, ErrBadGrade
	}

	sub, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	if sub.AssignmentID != a.ID {
		return models.AssignmentSubmission{}, ErrWrongAssignment
	}
	if !sub.IsSubmitted() {
		return models.AssignmentSubmission{}, ErrNotSubmitted
	}

	final := ApplyLatePenalty(raw, sub.IsLate, a.Grading)

	var out models.AssignmentSubmission
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": submissionID},
		bson.M{"$set": bson.M{
			"status":     models.SubmissionGraded,
			"grade":      final,
			"raw_grade":  raw,
			"feedback":   feedback,
			"graded_at":  now,
			"graded_by":  graderID,
			"updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	return out, nil
}

// ListForAssignment returns all submissions for an assignment.
func (s *Store) ListForAssignment(ctx context.Context, assignmentID primitive.ObjectID) ([]models.AssignmentSubmission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	return s.find(ctx, bson.M{"assignment_id": assignmentID}, opts)
}

// ListForStudentUntil returns a student's submissions created or handed in
// by to. There is no lower bound: work handed in early still belongs to an
// assignment due later, and callers match submissions to their assignments.
func (s *Store) ListForStudentUntil(ctx context.Context, studentID primitive.ObjectID, to time.Time) ([]models.AssignmentSubmission, error) {
	upTo := bson.M{"$lte": to}
	filter := bson.M{
		"student_id": studentID,
		"$or": []bson.M{
			{"submitted_at": upTo},
			{"created_at": upTo},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	return s.find(ctx, filter, opts)
}

// ListForStudentAssignments returns a student's submissions for the given assignments.
func (s *Store) ListForStudentAssignments(ctx context.Context, studentID primitive.ObjectID, assignmentIDs []primitive.ObjectID) ([]models.AssignmentSubmission, error) {
	if len(assignmentIDs) == 0 {
		return []models.AssignmentSubmission{}, nil
	}
	return s.find(ctx, bson.M{"student_id": studentID, "assignment_id": bson.M{"$in": assignmentIDs}})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AssignmentSubmission, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AssignmentSubmission{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteForAssignment removes every submission of an assignment.
func (s *Store) DeleteForAssignment(ctx context.Context, assignmentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"assignment_id": assignmentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
