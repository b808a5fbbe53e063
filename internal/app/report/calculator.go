package report

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Overall performance weights.
const (
	weightCompletion  = 0.4
	weightGradingRate = 0.3
	weightGrade       = 0.3
)

const monthLayout = "2006-01"

// Metrics are the computed numbers of a report. All percentages are whole
// numbers in 0..100.
type Metrics struct {
	TotalAssignments int `json:"totalAssignments"`
	Submitted        int `json:"submitted"`
	Graded           int `json:"graded"`
	Late             int `json:"late"`
	TotalGoals       int `json:"totalGoals"`
	CompletedGoals   int `json:"completedGoals"`

	AssignmentCompletion int `json:"assignmentCompletion"`
	GradingRate          int `json:"gradingRate"`
	AverageGrade         int `json:"averageGrade"`
	GoalsProgress        int `json:"goalsProgress"`
	OverallPerformance   int `json:"overallPerformance"`

	Subjects []SubjectStats `json:"subjects"`
	Monthly  []MonthlyStats `json:"monthly"`
}

// SubjectStats are the assignment ratios of one subject.
type SubjectStats struct {
	Subject      string `json:"subject"`
	Total        int    `json:"total"`
	Submitted    int    `json:"submitted"`
	Graded       int    `json:"graded"`
	Completion   int    `json:"completion"`
	GradingRate  int    `json:"gradingRate"`
	AverageGrade int    `json:"averageGrade"`
}

// MonthlyStats are the ratios of one calendar month. A submitted assignment
// counts in the month it was handed in, an open one in its due month, and
// goals in the month they were completed.
type MonthlyStats struct {
	Month          string `json:"month"`
	Assignments    int    `json:"assignments"`
	Submitted      int    `json:"submitted"`
	Graded         int    `json:"graded"`
	Completion     int    `json:"completion"`
	AverageGrade   int    `json:"averageGrade"`
	GoalsCompleted int    `json:"goalsCompleted"`
}

type tally struct {
	total, submitted, graded int
	gradeSum                 float64
}

func (t *tally) add(grade float64, submitted, graded bool) {
	if submitted {
		t.submitted++
	}
	if graded {
		t.graded++
		t.gradeSum += grade
	}
}

func (t tally) completion() int  { return pct(t.submitted, t.total) }
func (t tally) gradingRate() int { return pct(t.graded, t.submitted) }
func (t tally) average() int {
	if t.graded == 0 {
		return 0
	}
	return clamp(int(math.Round(t.gradeSum / float64(t.graded))))
}

// Calculate derives report metrics. Submissions for assignments that are not
// in the list are ignored, and only the latest submission per assignment
// counts.
func Calculate(assignments []models.Assignment, submissions []models.AssignmentSubmission, goals []models.Goal) Metrics {
	byID := make(map[primitive.ObjectID]models.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
	}
	latest := make(map[primitive.ObjectID]models.AssignmentSubmission, len(submissions))
	for _, s := range submissions {
		if _, ok := byID[s.AssignmentID]; !ok {
			continue
		}
		if prev, ok := latest[s.AssignmentID]; ok && !s.UpdatedAt.After(prev.UpdatedAt) {
			continue
		}
		latest[s.AssignmentID] = s
	}

	var (
		all      tally
		late     int
		subjects = map[string]*tally{}
		months   = map[string]*MonthlyStats{}
		mtally   = map[string]*tally{}
	)
	bucket := func(key string) (*MonthlyStats, *tally) {
		if _, ok := months[key]; !ok {
			months[key] = &MonthlyStats{Month: key}
			mtally[key] = &tally{}
		}
		return months[key], mtally[key]
	}

	for _, a := range assignments {
		subj := normalize.Subject(a.Subject)
		st, ok := subjects[subj]
		if !ok {
			st = &tally{}
			subjects[subj] = st
		}
		all.total++
		st.total++

		s, ok := latest[a.ID]
		if !ok {
			m, mt := bucket(a.DueDate.Format(monthLayout))
			m.Assignments++
			mt.total++
			continue
		}
		grade, graded := percentGrade(a, s)
		submitted := s.IsSubmitted()
		all.add(grade, submitted, graded)
		st.add(grade, submitted, graded)
		if s.IsLate && submitted {
			late++
		}

		// One month per assignment: the hand-in month once submitted.
		when := a.DueDate
		if submitted && s.SubmittedAt != nil {
			when = *s.SubmittedAt
		}
		m, mt := bucket(when.Format(monthLayout))
		m.Assignments++
		mt.total++
		mt.add(grade, submitted, graded)
	}

	completed := 0
	for _, g := range goals {
		if g.Status == models.GoalCompleted {
			completed++
		}
	}
	for _, g := range goals {
		if g.Status != models.GoalCompleted || g.CompletedAt == nil {
			continue
		}
		if m, ok := months[g.CompletedAt.Format(monthLayout)]; ok {
			m.GoalsCompleted++
		}
	}

	out := Metrics{
		TotalAssignments:     all.total,
		Submitted:            all.submitted,
		Graded:               all.graded,
		Late:                 late,
		TotalGoals:           len(goals),
		CompletedGoals:       completed,
		AssignmentCompletion: all.completion(),
		GradingRate:          all.gradingRate(),
		AverageGrade:         all.average(),
		GoalsProgress:        pct(completed, len(goals)),
		Subjects:             []SubjectStats{},
		Monthly:              []MonthlyStats{},
	}
	out.OverallPerformance = Overall(out.AssignmentCompletion, out.GradingRate, out.AverageGrade)

	for name, t := range subjects {
		out.Subjects = append(out.Subjects, SubjectStats{
			Subject:      name,
			Total:        t.total,
			Submitted:    t.submitted,
			Graded:       t.graded,
			Completion:   t.completion(),
			GradingRate:  t.gradingRate(),
			AverageGrade: t.average(),
		})
	}
	sort.Slice(out.Subjects, func(i, j int) bool { return out.Subjects[i].Subject < out.Subjects[j].Subject })

	for key, m := range months {
		t := mtally[key]
		m.Submitted = t.submitted
		m.Graded = t.graded
		m.Completion = t.completion()
		m.AverageGrade = t.average()
		out.Monthly = append(out.Monthly, *m)
	}
	sort.Slice(out.Monthly, func(i, j int) bool { return out.Monthly[i].Month > out.Monthly[j].Month })

	return out
}

// Overall blends completion, grading rate and average grade into one score.
func Overall(completion, gradingRate, averageGrade int) int {
	v := weightCompletion*float64(completion) + weightGradingRate*float64(gradingRate) + weightGrade*float64(averageGrade)
	return clamp(int(math.Round(v)))
}

// percentGrade returns the grade of s on a 0..100 scale.
func percentGrade(a models.Assignment, s models.AssignmentSubmission) (float64, bool) {
	if !s.IsGraded() {
		return 0, false
	}
	g := *s.Grade
	if a.Grading.MaxGrade > 0 && a.Grading.MaxGrade != 100 {
		g = g / float64(a.Grading.MaxGrade) * 100
	}
	return g, true
}

func pct(n, d int) int {
	if d == 0 {
		return 0
	}
	return clamp(int(math.Round(float64(n) / float64(d) * 100)))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

var monthNames = [...]string{"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık"}

// MonthLabel turns a "2006-01" bucket key into a Turkish label such as
// "Mart 2025". Unparseable keys are returned unchanged.
func MonthLabel(key string) string {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return key
	}
	return monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}
