package discountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateCode = errors.New("a discount with this code already exists")
	ErrBadPercent    = errors.New("discount percent must be between 1 and 100")
	ErrCodeRequired  = errors.New("discount code is required")
	// ErrUnavailable is returned by Redeem when the code is unknown, inactive,
	// expired, or used up.
	ErrUnavailable = errors.New("discount code is not available")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("discounts")}
}

// Create inserts an active discount. MaxUses of 0 means unlimited.
func (s *Store) Create(ctx context.Context, d models.Discount) (models.Discount, error) {
	d.Code = normalize.Code(d.Code)
	if d.Code == "" {
		return models.Discount{}, ErrCodeRequired
	}
	if d.Percent < 1 || d.Percent > 100 {
		return models.Discount{}, ErrBadPercent
	}
	d.ID = primitive.NewObjectID()
	d.UsedCount = 0
	d.IsActive = true
	d.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Discount{}, ErrDuplicateCode
		}
		return models.Discount{}, err
	}
	return d, nil
}

// GetByCode loads a discount by its (case-insensitive) code.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	var d models.Discount
	if err := s.c.FindOne(ctx, bson.M{"code": normalize.Code(code)}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func availableFilter(now time.Time) bson.M {
	return bson.M{
		"is_active": true,
		"$and": []bson.M{
			{"$or": []bson.M{
				{"expires_at": bson.M{"$exists": false}},
				{"expires_at": nil},
				{"expires_at": bson.M{"$gt": now}},
			}},
			{"$or": []bson.M{
				{"max_uses": 0},
				{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
			}},
		},
	}
}

// Redeem consumes one use of code at now. The availability check and the
// increment happen in one update so concurrent redemptions cannot exceed
// MaxUses.
func (s *Store) Redeem(ctx context.Context, code string, now time.Time) (models.Discount, error) {
	filter := availableFilter(now)
	filter["code"] = normalize.Code(code)

	var d models.Discount
	err := s.c.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"used_count": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return models.Discount{}, ErrUnavailable
	}
	if err != nil {
		return models.Discount{}, err
	}
	return d, nil
}

// ListActive returns the discounts that can still be redeemed at now.
func (s *Store) ListActive(ctx context.Context, now time.Time) ([]models.Discount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cur, err := s.c.Find(ctx, availableFilter(now), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Discount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate stops a code from being redeemed.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
