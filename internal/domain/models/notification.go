// internal/domain/models/notification.go
package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. Each type has exactly one payload field on Notification.
const (
	NotifyAssignmentCreated = "assignment_created"
	NotifyAssignmentGraded  = "assignment_graded"
	NotifyGoalCompleted     = "goal_completed"
	NotifyReportShared      = "report_shared"
)

// ErrNotificationPayload is returned when a notification's payload does not
// match its type.
var ErrNotificationPayload = errors.New("notification payload does not match its type")

// AssignmentCreatedPayload is sent to students when new work is published.
type AssignmentCreatedPayload struct {
	AssignmentID primitive.ObjectID `bson:"assignment_id" json:"assignmentId"`
	Title        string             `bson:"title" json:"title"`
	DueDate      time.Time          `bson:"due_date" json:"dueDate"`
}

// AssignmentGradedPayload is sent to a student when a submission is graded.
type AssignmentGradedPayload struct {
	AssignmentID primitive.ObjectID `bson:"assignment_id" json:"assignmentId"`
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submissionId"`
	Title        string             `bson:"title" json:"title"`
	Grade        float64            `bson:"grade" json:"grade"`
}

// GoalCompletedPayload is sent to parents when a flagged goal is completed.
type GoalCompletedPayload struct {
	GoalID      primitive.ObjectID `bson:"goal_id" json:"goalId"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"studentId"`
	StudentName string             `bson:"student_name" json:"studentName"`
	Title       string             `bson:"title" json:"title"`
}

// ReportSharedPayload is sent to parents when a public report link is created.
type ReportSharedPayload struct {
	ReportID   primitive.ObjectID `bson:"report_id" json:"reportId"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"studentId"`
	ShareToken string             `bson:"share_token" json:"shareToken"`
}

// Notification is a tagged union: Type selects which payload field is set.
type Notification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`
	Type   string             `bson:"type" json:"type"`
	Read   bool               `bson:"read" json:"read"`

	AssignmentCreated *AssignmentCreatedPayload `bson:"assignment_created,omitempty" json:"assignmentCreated,omitempty"`
	AssignmentGraded  *AssignmentGradedPayload  `bson:"assignment_graded,omitempty" json:"assignmentGraded,omitempty"`
	GoalCompleted     *GoalCompletedPayload     `bson:"goal_completed,omitempty" json:"goalCompleted,omitempty"`
	ReportShared      *ReportSharedPayload      `bson:"report_shared,omitempty" json:"reportShared,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// Validate checks that exactly the payload matching Type is present.
func (n Notification) Validate() error {
	set := 0
	var match bool
	if n.AssignmentCreated != nil {
		set++
		match = match || n.Type == NotifyAssignmentCreated
	}
	if n.AssignmentGraded != nil {
		set++
		match = match || n.Type == NotifyAssignmentGraded
	}
	if n.GoalCompleted != nil {
		set++
		match = match || n.Type == NotifyGoalCompleted
	}
	if n.ReportShared != nil {
		set++
		match = match || n.Type == NotifyReportShared
	}
	if set != 1 || !match {
		return ErrNotificationPayload
	}
	return nil
}
