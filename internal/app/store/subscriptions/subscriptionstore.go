package subscriptionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// List prices in kuruş.
const (
	MonthlyPriceCents int64 = 19900
	YearlyPriceCents  int64 = 199000
)

var ErrBadPlan = errors.New(`plan must be "free"|"monthly"|"yearly"`)

// Price returns the list price and period end of plan starting at start.
func Price(plan string, start time.Time) (int64, time.Time, error) {
	switch plan {
	case models.PlanFree:
		return 0, start.AddDate(1, 0, 0), nil
	case models.PlanMonthly:
		return MonthlyPriceCents, start.AddDate(0, 1, 0), nil
	case models.PlanYearly:
		return YearlyPriceCents, start.AddDate(1, 0, 0), nil
	}
	return 0, time.Time{}, ErrBadPlan
}

// Discounted applies percent off price, rounding down to whole kuruş.
func Discounted(price int64, percent int) int64 {
	if percent <= 0 {
		return price
	}
	if percent >= 100 {
		return 0
	}
	return price * int64(100-percent) / 100
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("subscriptions")}
}

// GetForTeacher returns the teacher's most recent subscription.
func (s *Store) GetForTeacher(ctx context.Context, teacherID primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	opts := options.FindOne().SetSort(bson.D{{Key: "period_end", Value: -1}, {Key: "created_at", Value: -1}})
	if err := s.c.FindOne(ctx, bson.M{"teacher_id": teacherID}, opts).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Activate starts a new subscription period for teacherID. Any active
// subscription is marked expired first. discount may be nil.
func (s *Store) Activate(ctx context.Context, teacherID primitive.ObjectID, plan string, discount *models.Discount, now time.Time) (models.Subscription, error) {
	price, end, err := Price(plan, now)
	if err != nil {
		return models.Subscription{}, err
	}

	sub := models.Subscription{
		ID:          primitive.NewObjectID(),
		TeacherID:   teacherID,
		Plan:        plan,
		Status:      models.SubscriptionActive,
		PriceCents:  price,
		PaidCents:   price,
		PeriodStart: now,
		PeriodEnd:   end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if discount != nil {
		id := discount.ID
		sub.DiscountID = &id
		sub.PaidCents = Discounted(price, discount.Percent)
	}

	if _, err := s.c.UpdateMany(ctx,
		bson.M{"teacher_id": teacherID, "status": models.SubscriptionActive},
		bson.M{"$set": bson.M{"status": models.SubscriptionExpired, "updated_at": now}},
	); err != nil {
		return models.Subscription{}, err
	}
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.Subscription{}, err
	}
	return sub, nil
}

// Cancel cancels the teacher's active subscription.
// Returns mongo.ErrNoDocuments when there is none.
func (s *Store) Cancel(ctx context.Context, teacherID primitive.ObjectID, now time.Time) (models.Subscription, error) {
	var out models.Subscription
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"teacher_id": teacherID, "status": models.SubscriptionActive},
		bson.M{"$set": bson.M{
			"status":       models.SubscriptionCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Subscription{}, err
	}
	return out, nil
}

// IsActive reports whether the teacher has an active subscription covering now.
func (s *Store) IsActive(ctx context.Context, teacherID primitive.ObjectID, now time.Time) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"teacher_id": teacherID,
		"status":     models.SubscriptionActive,
		"period_end": bson.M{"$gt": now},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
