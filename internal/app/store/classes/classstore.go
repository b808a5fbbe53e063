package classstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrCoTeacherLimit is returned when a class already has the maximum number of co-teachers.
	ErrCoTeacherLimit = fmt.Errorf("a class may have at most %d co-teachers", models.MaxCoTeachers)
	// ErrAlreadyPrimary is returned when adding the primary teacher as a co-teacher.
	ErrAlreadyPrimary = errors.New("teacher is already the primary teacher")
	// ErrNameRequired is returned when a class has no name.
	ErrNameRequired = errors.New("class name is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("classes")}
}

// Create inserts a new active class.
func (s *Store) Create(ctx context.Context, c models.Class) (models.Class, error) {
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return models.Class{}, ErrNameRequired
	}
	if len(c.CoTeacherIDs) > models.MaxCoTeachers {
		return models.Class{}, ErrCoTeacherLimit
	}
	c.ID = primitive.NewObjectID()
	c.NameCI = text.Fold(c.Name)
	c.IsActive = true
	if c.CoTeacherIDs == nil {
		c.CoTeacherIDs = []primitive.ObjectID{}
	}
	if c.StudentIDs == nil {
		c.StudentIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Class{}, err
	}
	return c, nil
}

// GetByID loads a class by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Class, error) {
	var c models.Class
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func teacherFilter(teacherID primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"teacher_id": teacherID},
		{"co_teacher_ids": teacherID},
	}}
}

// ListForTeacher returns the active classes where teacherID is primary or co-teacher.
func (s *Store) ListForTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Class, error) {
	filter := teacherFilter(teacherID)
	filter["is_active"] = true
	return s.find(ctx, filter)
}

// ListForStudent returns the active classes studentID is enrolled in.
func (s *Store) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Class, error) {
	return s.find(ctx, bson.M{"student_ids": studentID, "is_active": true})
}

// FindForStudentAndTeacher returns an active class in which studentID is
// enrolled and teacherID teaches. Returns mongo.ErrNoDocuments when none.
func (s *Store) FindForStudentAndTeacher(ctx context.Context, studentID, teacherID primitive.ObjectID) (*models.Class, error) {
	filter := teacherFilter(teacherID)
	filter["student_ids"] = studentID
	filter["is_active"] = true

	var c models.Class
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := s.c.FindOne(ctx, filter, opts).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// TeacherCanAccessStudent reports whether teacherID teaches any active class
// studentID is enrolled in.
func (s *Store) TeacherCanAccessStudent(ctx context.Context, teacherID, studentID primitive.ObjectID) (bool, error) {
	_, err := s.FindForStudentAndTeacher(ctx, studentID, teacherID)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Class{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name, description and subject.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description, subject string) error {
	name = normalize.Name(name)
	if name == "" {
		return ErrNameRequired
	}
	return s.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": description,
		"subject":     subject,
		"updated_at":  time.Now().UTC(),
	}})
}

// SetActive archives or restores a class.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return s.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}})
}

// AddStudent enrolls studentID. Enrolling twice is a no-op.
func (s *Store) AddStudent(ctx context.Context, classID, studentID primitive.ObjectID) error {
	return s.updateOne(ctx, bson.M{"_id": classID}, bson.M{
		"$addToSet": bson.M{"student_ids": studentID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// RemoveStudent withdraws studentID.
func (s *Store) RemoveStudent(ctx context.Context, classID, studentID primitive.ObjectID) error {
	return s.updateOne(ctx, bson.M{"_id": classID}, bson.M{
		"$pull": bson.M{"student_ids": studentID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// AddCoTeacher adds teacherID as a co-teacher. The size check and the push
// happen in one conditional update, so concurrent adds cannot exceed
// models.MaxCoTeachers. Adding an existing co-teacher is a no-op.
func (s *Store) AddCoTeacher(ctx context.Context, classID, teacherID primitive.ObjectID) error {
	c, err := s.GetByID(ctx, classID)
	if err != nil {
		return err
	}
	if c.TeacherID == teacherID {
		return ErrAlreadyPrimary
	}
	if c.HasTeacher(teacherID) {
		return nil
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":            classID,
			"co_teacher_ids": bson.M{"$ne": teacherID},
			fmt.Sprintf("co_teacher_ids.%d", models.MaxCoTeachers-1): bson.M{"$exists": false},
		},
		bson.M{
			"$push": bson.M{"co_teacher_ids": teacherID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the class filled up concurrently or the teacher was added concurrently.
		fresh, err := s.GetByID(ctx, classID)
		if err != nil {
			return err
		}
		if fresh.HasTeacher(teacherID) {
			return nil
		}
		return ErrCoTeacherLimit
	}
	return nil
}

// RemoveCoTeacher removes teacherID from the co-teachers.
func (s *Store) RemoveCoTeacher(ctx context.Context, classID, teacherID primitive.ObjectID) error {
	return s.updateOne(ctx, bson.M{"_id": classID}, bson.M{
		"$pull": bson.M{"co_teacher_ids": teacherID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
