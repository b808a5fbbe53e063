package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotOwner is returned when a teacher changes a report they did not create.
var ErrNotOwner = errors.New("report belongs to another teacher")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reports")}
}

func newToken() *string {
	t := uuid.NewString()
	return &t
}

// Save inserts a report. Public reports receive a share token.
func (s *Store) Save(ctx context.Context, r models.Report) (models.Report, error) {
	r.ID = primitive.NewObjectID()
	r.ShareToken = nil
	if r.IsPublic {
		r.ShareToken = newToken()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

// GetByID loads a report by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var r models.Report
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByToken loads a public report by its share token. Reports that were
// made private again are not returned.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.Report, error) {
	var r models.Report
	if err := s.c.FindOne(ctx, bson.M{"share_token": token, "is_public": true}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListForStudent returns saved reports of studentID, newest first.
func (s *Store) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Report{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPublic shares or unshares a report owned by teacherID. Sharing keeps an
// existing token so links handed out earlier work again; unsharing keeps it
// but GetByToken stops resolving it.
func (s *Store) SetPublic(ctx context.Context, teacherID, id primitive.ObjectID, public bool) (models.Report, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	if r.TeacherID != teacherID {
		return models.Report{}, ErrNotOwner
	}

	set := bson.M{"is_public": public, "updated_at": time.Now().UTC()}
	if public && r.ShareToken == nil {
		set["share_token"] = *newToken()
	}

	var out models.Report
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return models.Report{}, err
	}
	return out, nil
}
