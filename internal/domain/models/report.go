// internal/domain/models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a saved performance report. The aggregate itself is rebuilt
// from live data on every read; the document keeps the request parameters
// plus a snapshot of the headline numbers at save time.
type Report struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"studentId"`
	TeacherID primitive.ObjectID `bson:"teacher_id" json:"teacherId"`
	Title     string             `bson:"title" json:"title"`
	From      time.Time          `bson:"from" json:"from"`
	To        time.Time          `bson:"to" json:"to"`

	Summary ReportSummary `bson:"summary" json:"summary"`

	IsPublic   bool    `bson:"is_public" json:"isPublic"`
	ShareToken *string `bson:"share_token,omitempty" json:"shareToken,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ReportSummary is the headline snapshot stored with a saved report.
type ReportSummary struct {
	AssignmentCompletion int `bson:"assignment_completion" json:"assignmentCompletion"`
	GradingRate          int `bson:"grading_rate" json:"gradingRate"`
	AverageGrade         int `bson:"average_grade" json:"averageGrade"`
	GoalsProgress        int `bson:"goals_progress" json:"goalsProgress"`
	OverallPerformance   int `bson:"overall_performance" json:"overallPerformance"`
}
