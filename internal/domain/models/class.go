// internal/domain/models/class.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCoTeachers is the maximum number of co-teachers a class may have
// in addition to its primary teacher.
const MaxCoTeachers = 3

// Class is a teaching group with one primary teacher.
//
// NOTE:
//   - CoTeacherIDs never holds more than MaxCoTeachers entries; the store
//     enforces this with a conditional update.
//   - StudentIDs is the enrollment list.
type Class struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	NameCI       string               `bson:"name_ci" json:"-"`
	Description  string               `bson:"description" json:"description"`
	Subject      string               `bson:"subject,omitempty" json:"subject,omitempty"`
	TeacherID    primitive.ObjectID   `bson:"teacher_id" json:"teacherId"`
	CoTeacherIDs []primitive.ObjectID `bson:"co_teacher_ids" json:"coTeacherIds"`
	StudentIDs   []primitive.ObjectID `bson:"student_ids" json:"studentIds"`
	IsActive     bool                 `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasTeacher reports whether id is the primary teacher or a co-teacher.
func (c Class) HasTeacher(id primitive.ObjectID) bool {
	if c.TeacherID == id {
		return true
	}
	for _, t := range c.CoTeacherIDs {
		if t == id {
			return true
		}
	}
	return false
}

// HasStudent reports whether id is enrolled in the class.
func (c Class) HasStudent(id primitive.ObjectID) bool {
	for _, s := range c.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}
