// Package reportpolicy decides who may see a student's progress and reports.
//
// Authorization rules:
//   - Admins can view every student
//   - Teachers can view students they created or share an active class with
//   - Parents can view their linked children
//   - Students can view only themselves
package reportpolicy

import (
	"context"
	"errors"
	"net/http"

	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/authz"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Checker evaluates student access against the stores.
type Checker struct {
	Users   *userstore.Store
	Classes *classstore.Store
}

// New builds a Checker over db.
func New(db *mongo.Database) *Checker {
	return &Checker{Users: userstore.New(db), Classes: classstore.New(db)}
}

// CanViewStudent reports whether the signed-in user may see studentID's
// progress. A student that does not exist is reported as not viewable.
func (c *Checker) CanViewStudent(ctx context.Context, r *http.Request, studentID primitive.ObjectID) (bool, error) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false, nil
	}
	switch role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleStudent:
		return uid == studentID, nil
	case models.RoleTeacher:
		return c.TeacherCanView(ctx, uid, studentID)
	case models.RoleParent:
		return c.ParentCanView(ctx, uid, studentID)
	default:
		return false, nil
	}
}

// TeacherCanView reports whether teacherID created studentID or teaches
// them in an active class.
func (c *Checker) TeacherCanView(ctx context.Context, teacherID, studentID primitive.ObjectID) (bool, error) {
	st, err := c.Users.GetByID(ctx, studentID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if st.Role != models.RoleStudent {
		return false, nil
	}
	if st.CreatedBy != nil && *st.CreatedBy == teacherID {
		return true, nil
	}
	return c.Classes.TeacherCanAccessStudent(ctx, teacherID, studentID)
}

// ParentCanView reports whether studentID is one of parentID's children.
func (c *Checker) ParentCanView(ctx context.Context, parentID, studentID primitive.ObjectID) (bool, error) {
	p, err := c.Users.GetByID(ctx, parentID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, id := range p.ChildIDs {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}
