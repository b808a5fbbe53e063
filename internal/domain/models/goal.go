// internal/domain/models/goal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal statuses.
const (
	GoalPending    = "pending"
	GoalInProgress = "in_progress"
	GoalCompleted  = "completed"
	GoalCancelled  = "cancelled"
)

// Goal is a per-student target set by a teacher.
type Goal struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	StudentID       primitive.ObjectID   `bson:"student_id" json:"studentId"`
	TeacherID       primitive.ObjectID   `bson:"teacher_id" json:"teacherId"`
	Title           string               `bson:"title" json:"title"`
	Description     string               `bson:"description" json:"description"`
	Category        string               `bson:"category,omitempty" json:"category,omitempty"`
	Priority        string               `bson:"priority,omitempty" json:"priority,omitempty"`
	SuccessCriteria string               `bson:"success_criteria,omitempty" json:"successCriteria,omitempty"`
	Status          string               `bson:"status" json:"status"`
	Progress        int                  `bson:"progress" json:"progress"` // 0..100
	AssignmentIDs   []primitive.ObjectID `bson:"assignment_ids,omitempty" json:"assignmentIds,omitempty"`
	NotifyParent    bool                 `bson:"notify_parent" json:"notifyParent"`

	TargetDate  *time.Time `bson:"target_date,omitempty" json:"targetDate,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsValidGoalStatus reports whether s is a known goal status.
func IsValidGoalStatus(s string) bool {
	switch s {
	case GoalPending, GoalInProgress, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}
