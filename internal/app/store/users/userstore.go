package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidCredentials is returned by Authenticate for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInactive is returned by Authenticate when the account is deactivated.
	ErrInactive = errors.New("user is inactive")
	// ErrNotParent is returned by AddChild when the target user is not a parent.
	ErrNotParent = errors.New("user is not a parent")
	// ErrNotStudent is returned by AddChild when the child is not a student.
	ErrNotStudent = errors.New("user is not a student")

	errBadRole = errors.New(`role must be "admin"|"teacher"|"student"|"parent"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleSubject looks up a user linked to a Google account.
func (s *Store) GetByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"auth_return_id": subject}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new active user. When password is non-empty it is
// stored as a bcrypt hash and the auth method is "password".
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.IsActive = true

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = string(hash)
		u.AuthMethod = "password"
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks email and password and returns the user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactive
	}
	return u, nil
}

// ListByRole returns users with the given role sorted by name.
// When activeOnly is set, deactivated users are skipped.
func (s *Store) ListByRole(ctx context.Context, role string, activeOnly bool) ([]models.User, error) {
	filter := bson.M{"role": role}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

// ListByIDs returns the users whose IDs are in ids, sorted by name.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

// ListCreatedBy returns users with role that creatorID created, sorted by name.
func (s *Store) ListCreatedBy(ctx context.Context, creatorID primitive.ObjectID, role string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{"created_by": creatorID, "role": role}, opts)
}

// ListParentsOf returns active parents that have childID among their children.
func (s *Store) ListParentsOf(ctx context.Context, childID primitive.ObjectID) ([]models.User, error) {
	return s.find(ctx, bson.M{"role": models.RoleParent, "child_ids": childID, "is_active": true})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetActive activates or deactivates a user. Users are never hard-deleted.
// Returns mongo.ErrNoDocuments if no user matched.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddChild links a student to a parent. Adding the same child twice is a no-op.
func (s *Store) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	child, err := s.GetByID(ctx, childID)
	if err != nil {
		return err
	}
	if child.Role != models.RoleStudent {
		return ErrNotStudent
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": parentID, "role": models.RoleParent},
		bson.M{
			"$addToSet": bson.M{"child_ids": childID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotParent
	}
	return nil
}

// ProfileUpdate holds the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName   *string
	Email      *string
	Phone      *string
	GradeLevel *string
	School     *string
	Subjects   []string
}

// UpdateProfile applies upd to the user.
// Returns ErrDuplicateEmail if the new email belongs to another user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.GradeLevel != nil {
		set["grade_level"] = *upd.GradeLevel
	}
	if upd.School != nil {
		set["school"] = *upd.School
	}
	if upd.Subjects != nil {
		set["subjects"] = upd.Subjects
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// LinkGoogle records the Google subject for a user signing in with Google.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, subject string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"auth_return_id": subject,
		"updated_at":     time.Now().UTC(),
	}})
	return err
}
