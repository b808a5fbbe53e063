package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeRange(t *testing.T) {
	now := day(2025, time.June, 15)

	from, to, err := report.NormalizeRange(time.Time{}, time.Time{}, now)
	if err != nil {
		t.Fatalf("NormalizeRange: %v", err)
	}
	if !to.Equal(now) || !from.Equal(now.Add(-report.DefaultRange)) {
		t.Errorf("defaults: got %v..%v", from, to)
	}

	if _, _, err := report.NormalizeRange(now, now.Add(-time.Hour), now); !errors.Is(err, report.ErrBadRange) {
		t.Errorf("reversed range: got %v, want ErrBadRange", err)
	}
}

func TestProgress(t *testing.T) {
	sid := primitive.NewObjectID()
	a := assignment("Matematik", day(2025, time.June, 1))
	src := &fakeSource{
		assignments: []models.Assignment{a},
		submissions: []models.AssignmentSubmission{graded(a, day(2025, time.May, 30), 90)},
	}

	p, err := report.Progress(context.Background(), src, sid, day(2025, time.May, 1), day(2025, time.June, 30))
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Metrics.AssignmentCompletion != 100 || p.Metrics.AverageGrade != 90 {
		t.Errorf("metrics: got %+v", p.Metrics)
	}
	if len(p.Insights.Strengths) == 0 {
		t.Error("expected strengths for a strong record")
	}

	src.goalsErr = errors.New("boom")
	if _, err := report.Progress(context.Background(), src, sid, day(2025, time.May, 1), day(2025, time.June, 30)); err == nil {
		t.Error("expected the goals error to surface")
	}
}
