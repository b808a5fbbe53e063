// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment targets.
const (
	AssignmentIndividual = "individual"
	AssignmentClass      = "class"
)

// Late policies for submissions arriving after the due date.
const (
	LateAccept  = "accept"  // accepted, marked late, no penalty
	LatePenalty = "penalty" // accepted, marked late, grade reduced by PenaltyPercent
	LateReject  = "reject"  // refused once the due date has passed
)

// Priorities shared by assignments and goals.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Attachment is a file or link attached to an assignment or submission.
type Attachment struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	URL         string `bson:"url" json:"url"`
	ContentType string `bson:"content_type,omitempty" json:"contentType,omitempty"`
	Size        int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// GradingPolicy controls late handling and resubmission.
type GradingPolicy struct {
	LatePolicy     string `bson:"late_policy" json:"latePolicy"`
	PenaltyPercent int    `bson:"penalty_percent" json:"penaltyPercent"` // 0..100
	MaxAttempts    int    `bson:"max_attempts" json:"maxAttempts"`       // >= 1
	MaxGrade       int    `bson:"max_grade" json:"maxGrade"`             // grades are stored on a 0..MaxGrade scale
}

// Assignment is work set by a teacher for a single student or a whole class.
//
// Invariants:
//   - Type == "class" requires ClassID.
//   - Type == "individual" requires StudentID.
type Assignment struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Subject     string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Type        string              `bson:"type" json:"type"`
	TeacherID   primitive.ObjectID  `bson:"teacher_id" json:"teacherId"`
	ClassID     *primitive.ObjectID `bson:"class_id,omitempty" json:"classId,omitempty"`
	StudentID   *primitive.ObjectID `bson:"student_id,omitempty" json:"studentId,omitempty"`

	DueDate     time.Time  `bson:"due_date" json:"dueDate"`
	PublishDate *time.Time `bson:"publish_date,omitempty" json:"publishDate,omitempty"`
	CloseDate   *time.Time `bson:"close_date,omitempty" json:"closeDate,omitempty"`

	Attachments []Attachment  `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Grading     GradingPolicy `bson:"grading" json:"grading"`

	// Goal-like tracking fields.
	Category        string `bson:"category,omitempty" json:"category,omitempty"`
	Priority        string `bson:"priority,omitempty" json:"priority,omitempty"`
	SuccessCriteria string `bson:"success_criteria,omitempty" json:"successCriteria,omitempty"`
	Progress        int    `bson:"progress,omitempty" json:"progress,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsPublished reports whether students may see the assignment at t.
func (a Assignment) IsPublished(t time.Time) bool {
	return a.PublishDate == nil || !t.Before(*a.PublishDate)
}

// IsClosed reports whether submissions are no longer accepted at t.
func (a Assignment) IsClosed(t time.Time) bool {
	return a.CloseDate != nil && t.After(*a.CloseDate)
}
