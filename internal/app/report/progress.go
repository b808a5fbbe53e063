package report

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressView is a student's metrics and insights over a range.
type ProgressView struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Metrics  Metrics   `json:"metrics"`
	Insights Insights  `json:"insights"`
}

// Progress computes metrics and insights for studentID from src. Unlike a
// report it needs no teacher and fails on any fetch error.
func Progress(ctx context.Context, src Source, studentID primitive.ObjectID, from, to time.Time) (ProgressView, error) {
	assignments, err := src.Assignments(ctx, studentID, from, to)
	if err != nil {
		return ProgressView{}, err
	}
	submissions, err := src.Submissions(ctx, studentID, from, to)
	if err != nil {
		return ProgressView{}, err
	}
	goals, err := src.Goals(ctx, studentID, from, to)
	if err != nil {
		return ProgressView{}, err
	}
	m := Calculate(assignments, submissions, goals)
	return ProgressView{
		From:     from,
		To:       to,
		Metrics:  m,
		Insights: GenerateInsights(m, goals),
	}, nil
}
