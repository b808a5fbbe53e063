package goalstore

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
	ErrTitleRequired = errors.New("goal title is required")
	ErrBadStatus     = errors.New(`status must be "pending"|"in_progress"|"completed"|"cancelled"`)
	ErrBadProgress   = errors.New("progress must be between 0 and 100")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("goals")}
}

// Create inserts a new goal. Status defaults to pending.
func (s *Store) Create(ctx context.Context, g models.Goal) (models.Goal, error) {
	g.Title = normalize.Name(g.Title)
	if g.Title == "" {
		return models.Goal{}, ErrTitleRequired
	}
	if g.Status == "" {
		g.Status = models.GoalPending
	}
	if !models.IsValidGoalStatus(g.Status) {
		return models.Goal{}, ErrBadStatus
	}
	if g.Progress < 0 || g.Progress > 100 {
		return models.Goal{}, ErrBadProgress
	}

	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Status == models.GoalCompleted {
		g.Progress = 100
		g.CompletedAt = &now
	}

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

// GetByID loads a goal by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var g models.Goal
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListForTeacher returns goals set by teacherID, newest first.
// An empty status matches all.
func (s *Store) ListForTeacher(ctx context.Context, teacherID primitive.ObjectID, status string) ([]models.Goal, error) {
	filter := bson.M{"teacher_id": teacherID}
	if status != "" {
		filter["status"] = status
	}
	return s.find(ctx, filter)
}

// ListForStudent returns all goals of studentID, newest first.
func (s *Store) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Goal, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// ListForReport returns goals of studentID created, targeted or completed
// within [from, to].
func (s *Store) ListForReport(ctx context.Context, studentID primitive.ObjectID, from, to time.Time) ([]models.Goal, error) {
	rng := bson.M{"$gte": from, "$lte": to}
	return s.find(ctx, bson.M{
		"student_id": studentID,
		"$or": []bson.M{
			{"created_at": rng},
			{"target_date": rng},
			{"completed_at": rng},
		},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Goal{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the descriptive fields of a goal set by teacherID.
func (s *Store) Update(ctx context.Context, teacherID primitive.ObjectID, g models.Goal) error {
	g.Title = normalize.Name(g.Title)
	if g.Title == "" {
		return ErrTitleRequired
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": g.ID, "teacher_id": teacherID}, bson.M{"$set": bson.M{
		"title":            g.Title,
		"description":      g.Description,
		"category":         g.Category,
		"priority":         g.Priority,
		"success_criteria": g.SuccessCriteria,
		"assignment_ids":   g.AssignmentIDs,
		"notify_parent":    g.NotifyParent,
		"target_date":      g.TargetDate,
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

// ProgressUpdate changes status and/or progress. Nil fields are left as is.
type ProgressUpdate struct {
	Status   *string
	Progress *int
}

// Resolve computes the resulting status, progress and completion time of
// applying upd to g at now.
//
// Reaching 100% progress completes the goal; completing it sets progress to
// 100. CompletedAt is set on entering completed and cleared on leaving it.
func Resolve(g models.Goal, upd ProgressUpdate, now time.Time) (models.Goal, error) {
	if upd.Progress != nil {
		p := *upd.Progress
		if p < 0 || p > 100 {
			return g, ErrBadProgress
		}
		g.Progress = p
		if upd.Status == nil {
			switch {
			case p == 100:
				g.Status = models.GoalCompleted
			case p > 0 && (g.Status == models.GoalPending || g.Status == models.GoalCompleted):
				g.Status = models.GoalInProgress
			}
		}
	}
	if upd.Status != nil {
		if !models.IsValidGoalStatus(*upd.Status) {
			return g, ErrBadStatus
		}
		g.Status = *upd.Status
	}

	if g.Status == models.GoalCompleted {
		g.Progress = 100
		if g.CompletedAt == nil {
			t := now
			g.CompletedAt = &t
		}
	} else {
		g.CompletedAt = nil
	}
	g.UpdatedAt = now
	return g, nil
}

// UpdateProgress applies upd to a goal and reports whether the goal became
// completed with this call.
func (s *Store) UpdateProgress(ctx context.Context, id primitive.ObjectID, upd ProgressUpdate, now time.Time) (models.Goal, bool, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Goal{}, false, err
	}
	next, err := Resolve(*cur, upd, now)
	if err != nil {
		return models.Goal{}, false, err
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       next.Status,
		"progress":     next.Progress,
		"completed_at": next.CompletedAt,
		"updated_at":   next.UpdatedAt,
	}})
	if err != nil {
		return models.Goal{}, false, err
	}
	justCompleted := cur.Status != models.GoalCompleted && next.Status == models.GoalCompleted
	return next, justCompleted, nil
}

// Delete removes a goal set by teacherID.
func (s *Store) Delete(ctx context.Context, teacherID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "teacher_id": teacherID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
