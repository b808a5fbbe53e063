// Package freeslotstore hands out the limited free teacher slots on a
// first-come-first-served basis.
package freeslotstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCap is the number of free teacher slots.
const DefaultCap = 20

// ErrSlotsExhausted is returned when every free slot is taken.
var ErrSlotsExhausted = errors.New("all free teacher slots are taken")

type Store struct {
	c   *mongo.Collection
	cap int
}

// New creates a store handing out at most capacity slots. A capacity of 0
// uses DefaultCap.
func New(db *mongo.Database, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Store{c: db.Collection("free_teacher_slots"), cap: capacity}
}

// Cap returns the configured number of slots.
func (s *Store) Cap() int { return s.cap }

// Claim gives teacherID the lowest free slot number. A teacher that already
// holds a slot gets it back unchanged.
//
// Slot numbers and teacher IDs are both unique-indexed, so two concurrent
// claims for the same number cannot both succeed; the loser tries the next
// number until the cap is reached.
func (s *Store) Claim(ctx context.Context, teacherID primitive.ObjectID, now time.Time) (models.FreeTeacherSlot, bool, error) {
	if existing, err := s.GetForTeacher(ctx, teacherID); err == nil {
		return *existing, false, nil
	} else if err != mongo.ErrNoDocuments {
		return models.FreeTeacherSlot{}, false, err
	}

	taken, err := s.takenNumbers(ctx)
	if err != nil {
		return models.FreeTeacherSlot{}, false, err
	}

	for n := 1; n <= s.cap; n++ {
		if taken[n] {
			continue
		}
		slot := models.FreeTeacherSlot{
			ID:         primitive.NewObjectID(),
			SlotNumber: n,
			TeacherID:  teacherID,
			AssignedAt: now,
		}
		_, err := s.c.InsertOne(ctx, slot)
		if err == nil {
			metrics.FreeSlotClaimed()
			return slot, true, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.FreeTeacherSlot{}, false, err
		}
		// Either the number was taken concurrently or this teacher won a
		// slot in a concurrent call.
		if existing, err := s.GetForTeacher(ctx, teacherID); err == nil {
			return *existing, false, nil
		}
	}
	return models.FreeTeacherSlot{}, false, ErrSlotsExhausted
}

func (s *Store) takenNumbers(ctx context.Context) (map[int]bool, error) {
	slots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(slots))
	for _, sl := range slots {
		taken[sl.SlotNumber] = true
	}
	return taken, nil
}

// GetForTeacher returns the slot held by teacherID.
func (s *Store) GetForTeacher(ctx context.Context, teacherID primitive.ObjectID) (*models.FreeTeacherSlot, error) {
	var sl models.FreeTeacherSlot
	if err := s.c.FindOne(ctx, bson.M{"teacher_id": teacherID}).Decode(&sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// List returns every claimed slot by slot number.
func (s *Store) List(ctx context.Context) ([]models.FreeTeacherSlot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "slot_number", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.FreeTeacherSlot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of claimed slots.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Release frees the slot held by teacherID. Returns mongo.ErrNoDocuments
// when the teacher holds none.
func (s *Store) Release(ctx context.Context, teacherID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"teacher_id": teacherID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
