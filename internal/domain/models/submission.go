// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission statuses.
const (
	SubmissionNotStarted = "not_started"
	SubmissionSubmitted  = "submitted"
	SubmissionLate       = "late"
	SubmissionGraded     = "graded"
)

// AssignmentSubmission is a student's work for one assignment.
// Exactly one document exists per (assignment_id, student_id); a unique
// index enforces this.
type AssignmentSubmission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignment_id" json:"assignmentId"`
	StudentID    primitive.ObjectID `bson:"student_id" json:"studentId"`
	TeacherID    primitive.ObjectID `bson:"teacher_id" json:"teacherId"`

	Status      string       `bson:"status" json:"status"`
	Content     string       `bson:"content,omitempty" json:"content,omitempty"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Attempts    int          `bson:"attempts" json:"attempts"`
	IsLate      bool         `bson:"is_late" json:"isLate"`

	Grade    *float64 `bson:"grade,omitempty" json:"grade,omitempty"`
	RawGrade *float64 `bson:"raw_grade,omitempty" json:"rawGrade,omitempty"` // before late penalty
	Feedback string   `bson:"feedback,omitempty" json:"feedback,omitempty"`

	SubmittedAt *time.Time          `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	GradedAt    *time.Time          `bson:"graded_at,omitempty" json:"gradedAt,omitempty"`
	GradedBy    *primitive.ObjectID `bson:"graded_by,omitempty" json:"gradedBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsSubmitted reports whether the student has turned the work in.
func (s AssignmentSubmission) IsSubmitted() bool {
	switch s.Status {
	case SubmissionSubmitted, SubmissionLate, SubmissionGraded:
		return true
	}
	return false
}

// IsGraded reports whether the submission carries a grade.
func (s AssignmentSubmission) IsGraded() bool {
	return s.Status == SubmissionGraded && s.Grade != nil
}
