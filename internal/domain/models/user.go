// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a User can hold.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// User represents admins, teachers, students, and parents.
//
// NOTE:
//   - Users are never hard-deleted; IsActive=false is the soft-deactivated state.
//   - ChildIDs is only populated for parents and references student users.
//   - Class enrollment is stored on the class document, not here.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"fullName"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"authMethod,omitempty"` // password | google
	AuthReturnID *string            `bson:"auth_return_id,omitempty" json:"-"`                 // Google subject, once linked
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"isActive"`

	// Parent-only
	ChildIDs []primitive.ObjectID `bson:"child_ids,omitempty" json:"childIds,omitempty"`

	// Student/teacher profile details
	GradeLevel string   `bson:"grade_level,omitempty" json:"gradeLevel,omitempty"`
	School     string   `bson:"school,omitempty" json:"school,omitempty"`
	Subjects   []string `bson:"subjects,omitempty" json:"subjects,omitempty"`

	// CreatedBy is the admin or teacher who created the account.
	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}
