package report_test

import (
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func grade(v float64) *float64 { return &v }

func assignment(subject string, due time.Time) models.Assignment {
	return models.Assignment{
		ID:      primitive.NewObjectID(),
		Title:   "Ödev",
		Subject: subject,
		DueDate: due,
		Grading: models.GradingPolicy{MaxGrade: 100},
	}
}

func submitted(a models.Assignment, at time.Time) models.AssignmentSubmission {
	return models.AssignmentSubmission{
		ID:           primitive.NewObjectID(),
		AssignmentID: a.ID,
		Status:       models.SubmissionSubmitted,
		SubmittedAt:  &at,
		UpdatedAt:    at,
	}
}

func graded(a models.Assignment, at time.Time, g float64) models.AssignmentSubmission {
	s := submitted(a, at)
	s.Status = models.SubmissionGraded
	s.Grade = grade(g)
	return s
}

func TestCalculate_WorkedExample(t *testing.T) {
	due := day(2025, time.March, 10)
	var as []models.Assignment
	for i := 0; i < 10; i++ {
		as = append(as, assignment("Matematik", due))
	}
	var subs []models.AssignmentSubmission
	for i, g := range []float64{60, 70, 80, 90, 100} {
		subs = append(subs, graded(as[i], due, g))
	}
	subs = append(subs, submitted(as[5], due), submitted(as[6], due))

	m := report.Calculate(as, subs, nil)

	checks := []struct {
		name      string
		got, want int
	}{
		{"TotalAssignments", m.TotalAssignments, 10},
		{"Submitted", m.Submitted, 7},
		{"Graded", m.Graded, 5},
		{"AssignmentCompletion", m.AssignmentCompletion, 70},
		{"GradingRate", m.GradingRate, 71},
		{"AverageGrade", m.AverageGrade, 80},
		{"GoalsProgress", m.GoalsProgress, 0},
		{"OverallPerformance", m.OverallPerformance, 73},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestCalculate_Empty(t *testing.T) {
	m := report.Calculate(nil, nil, nil)
	if m.AssignmentCompletion != 0 || m.GradingRate != 0 || m.AverageGrade != 0 ||
		m.GoalsProgress != 0 || m.OverallPerformance != 0 {
		t.Errorf("expected all zero metrics, got %+v", m)
	}
	if m.Subjects == nil || m.Monthly == nil {
		t.Error("subject and monthly lists should be empty, not nil")
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		c, g, a int
		want    int
	}{
		{100, 100, 100, 100},
		{0, 0, 0, 0},
		{70, 71, 80, 73},
		{50, 0, 0, 20},
	}
	for _, tt := range tests {
		if got := report.Overall(tt.c, tt.g, tt.a); got != tt.want {
			t.Errorf("Overall(%d,%d,%d): got %d, want %d", tt.c, tt.g, tt.a, got, tt.want)
		}
	}
}

func TestCalculate_IgnoresForeignSubmissions(t *testing.T) {
	a := assignment("", day(2025, time.March, 1))
	other := assignment("", day(2025, time.March, 1))
	subs := []models.AssignmentSubmission{
		submitted(a, day(2025, time.March, 1)),
		submitted(other, day(2025, time.March, 1)),
	}

	m := report.Calculate([]models.Assignment{a}, subs, nil)
	if m.Submitted != 1 {
		t.Errorf("Submitted: got %d, want 1", m.Submitted)
	}
	if m.AssignmentCompletion != 100 {
		t.Errorf("AssignmentCompletion: got %d, want 100", m.AssignmentCompletion)
	}
}

func TestCalculate_LatestSubmissionWins(t *testing.T) {
	a := assignment("", day(2025, time.March, 1))
	old := graded(a, day(2025, time.March, 1), 40)
	newer := graded(a, day(2025, time.March, 2), 90)

	m := report.Calculate([]models.Assignment{a}, []models.AssignmentSubmission{newer, old}, nil)
	if m.Submitted != 1 || m.AverageGrade != 90 {
		t.Errorf("got submitted=%d average=%d, want 1 and 90", m.Submitted, m.AverageGrade)
	}
}

func TestCalculate_ScalesGradesToPercent(t *testing.T) {
	a := assignment("", day(2025, time.March, 1))
	a.Grading.MaxGrade = 20
	m := report.Calculate([]models.Assignment{a}, []models.AssignmentSubmission{graded(a, a.DueDate, 15)}, nil)
	if m.AverageGrade != 75 {
		t.Errorf("AverageGrade: got %d, want 75", m.AverageGrade)
	}
}

func TestCalculate_Subjects(t *testing.T) {
	mat := assignment("Matematik", day(2025, time.March, 1))
	none := assignment("  ", day(2025, time.March, 1))
	none2 := assignment("", day(2025, time.March, 2))

	m := report.Calculate(
		[]models.Assignment{mat, none, none2},
		[]models.AssignmentSubmission{graded(mat, mat.DueDate, 50), graded(none, none.DueDate, 90)},
		nil,
	)

	if len(m.Subjects) != 2 {
		t.Fatalf("len(Subjects): got %d, want 2", len(m.Subjects))
	}
	got := map[string]report.SubjectStats{}
	for _, s := range m.Subjects {
		got[s.Subject] = s
	}
	gen, ok := got["Genel"]
	if !ok {
		t.Fatalf("missing Genel bucket: %+v", m.Subjects)
	}
	if gen.Total != 2 || gen.Submitted != 1 || gen.Completion != 50 || gen.AverageGrade != 90 {
		t.Errorf("Genel: got %+v", gen)
	}
	if got["Matematik"].AverageGrade != 50 {
		t.Errorf("Matematik AverageGrade: got %d, want 50", got["Matematik"].AverageGrade)
	}
}

func TestCalculate_MonthlyBuckets(t *testing.T) {
	jan := assignment("", day(2025, time.January, 20))
	feb := assignment("", day(2025, time.February, 5))
	// Due in February, handed in during March.
	late := assignment("", day(2025, time.February, 25))

	completedMarch := day(2025, time.March, 3)
	completedJune := day(2025, time.June, 3)
	goals := []models.Goal{
		{Status: models.GoalCompleted, CompletedAt: &completedMarch},
		{Status: models.GoalCompleted, CompletedAt: &completedJune},
		{Status: models.GoalPending},
	}

	m := report.Calculate(
		[]models.Assignment{jan, feb, late},
		[]models.AssignmentSubmission{
			graded(jan, day(2025, time.January, 19), 80),
			submitted(late, day(2025, time.March, 2)),
		},
		goals,
	)

	wantMonths := []string{"2025-03", "2025-02", "2025-01"}
	if len(m.Monthly) != len(wantMonths) {
		t.Fatalf("len(Monthly): got %d, want %d (%+v)", len(m.Monthly), len(wantMonths), m.Monthly)
	}
	for i, w := range wantMonths {
		if m.Monthly[i].Month != w {
			t.Errorf("Monthly[%d]: got %s, want %s", i, m.Monthly[i].Month, w)
		}
	}

	mar, feb2, jan2 := m.Monthly[0], m.Monthly[1], m.Monthly[2]
	if mar.Assignments != 1 || mar.Submitted != 1 || mar.Completion != 100 || mar.GoalsCompleted != 1 {
		t.Errorf("March: got %+v", mar)
	}
	if feb2.Assignments != 1 || feb2.Submitted != 0 || feb2.Completion != 0 {
		t.Errorf("February: got %+v", feb2)
	}
	if jan2.Assignments != 1 || jan2.Submitted != 1 || jan2.Completion != 100 || jan2.AverageGrade != 80 {
		t.Errorf("January: got %+v", jan2)
	}
	if m.CompletedGoals != 2 || m.GoalsProgress != 67 {
		t.Errorf("goals: got completed=%d progress=%d, want 2 and 67", m.CompletedGoals, m.GoalsProgress)
	}
}

func TestCalculate_HandedInOtherMonth(t *testing.T) {
	early := assignment("", day(2025, time.March, 2))
	late := assignment("", day(2025, time.April, 28))

	m := report.Calculate(
		[]models.Assignment{early, late},
		[]models.AssignmentSubmission{
			graded(early, day(2025, time.February, 27), 90),
			submitted(late, day(2025, time.May, 2)),
		},
		nil,
	)

	if m.AssignmentCompletion != 100 {
		t.Fatalf("AssignmentCompletion: got %d, want 100", m.AssignmentCompletion)
	}
	want := map[string]int{"2025-05": 100, "2025-02": 100}
	if len(m.Monthly) != len(want) {
		t.Fatalf("len(Monthly): got %d, want %d (%+v)", len(m.Monthly), len(want), m.Monthly)
	}
	for _, row := range m.Monthly {
		c, ok := want[row.Month]
		if !ok {
			t.Errorf("unexpected month %s: %+v", row.Month, row)
			continue
		}
		if row.Assignments != 1 || row.Submitted != 1 || row.Completion != c {
			t.Errorf("%s: got %+v, want one assignment at %d%%", row.Month, row, c)
		}
	}
}

func TestCalculate_CompletionClamped(t *testing.T) {
	a := assignment("", day(2025, time.March, 1))
	for n := 0; n < 5; n++ {
		var subs []models.AssignmentSubmission
		for i := 0; i < n; i++ {
			s := submitted(a, day(2025, time.March, 1+i))
			subs = append(subs, s)
		}
		m := report.Calculate([]models.Assignment{a}, subs, nil)
		if m.AssignmentCompletion < 0 || m.AssignmentCompletion > 100 {
			t.Errorf("n=%d: completion %d out of range", n, m.AssignmentCompletion)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	if got := report.MonthLabel("2025-08"); got != "Ağustos 2025" {
		t.Errorf("MonthLabel: got %q", got)
	}
	if got := report.MonthLabel("bogus"); got != "bogus" {
		t.Errorf("MonthLabel(bogus): got %q", got)
	}
}
