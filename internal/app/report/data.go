package report

import (
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request identifies one report: a student, the teacher it is prepared by,
// and an inclusive date range.
type Request struct {
	StudentID primitive.ObjectID
	TeacherID primitive.ObjectID
	From      time.Time
	To        time.Time
	Title     string
}

// DefaultRange is used when a request has no range: the 30 days up to now.
const DefaultRange = 30 * 24 * time.Hour

func (r Request) normalized(now time.Time) (Request, error) {
	var err error
	r.From, r.To, err = NormalizeRange(r.From, r.To, now)
	return r, err
}

// NormalizeRange fills a zero to with now and a zero from with
// to-DefaultRange. It returns ErrBadRange when to is before from.
func NormalizeRange(from, to, now time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-DefaultRange)
	}
	if to.Before(from) {
		return from, to, ErrBadRange
	}
	return from, to, nil
}

// Bundle is the raw material of a report as returned by Fetch.
type Bundle struct {
	Student     *models.User
	Teacher     *models.User
	Class       *models.Class
	Assignments []models.Assignment
	Submissions []models.AssignmentSubmission
	Goals       []models.Goal
	// Partial names the peripheral collections that failed to load and were
	// left empty.
	Partial []string
}

// Person is the student or teacher block of a report.
type Person struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	GradeLevel string `json:"gradeLevel,omitempty"`
	School     string `json:"school,omitempty"`
}

// ClassInfo is the optional class block of a report.
type ClassInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
}

// GoalItem is one row of the goals list.
type GoalItem struct {
	Title       string     `json:"title"`
	Category    string     `json:"category,omitempty"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"statusLabel"`
	Progress    int        `json:"progress"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AssignmentItem is one row of the assignments list.
type AssignmentItem struct {
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	Grade       *float64  `json:"grade,omitempty"`
	MaxGrade    int       `json:"maxGrade"`
	IsLate      bool      `json:"isLate"`
}

// Data is the aggregated report handed to a renderer.
type Data struct {
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generatedAt"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Student     Person           `json:"student"`
	Teacher     Person           `json:"teacher"`
	Class       *ClassInfo       `json:"class,omitempty"`
	Metrics     Metrics          `json:"metrics"`
	Insights    Insights         `json:"insights"`
	Goals       []GoalItem       `json:"goals"`
	Assignments []AssignmentItem `json:"assignments"`
	Partial     []string         `json:"partial,omitempty"`
}

// Summary returns the headline numbers stored with a saved report.
func (d *Data) Summary() models.ReportSummary {
	return models.ReportSummary{
		AssignmentCompletion: d.Metrics.AssignmentCompletion,
		GradingRate:          d.Metrics.GradingRate,
		AverageGrade:         d.Metrics.AverageGrade,
		GoalsProgress:        d.Metrics.GoalsProgress,
		OverallPerformance:   d.Metrics.OverallPerformance,
	}
}

var goalStatusLabels = map[string]string{
	models.GoalPending:    "Beklemede",
	models.GoalInProgress: "Devam ediyor",
	models.GoalCompleted:  "Tamamlandı",
	models.GoalCancelled:  "İptal edildi",
}

var submissionStatusLabels = map[string]string{
	models.SubmissionNotStarted: "Başlanmadı",
	models.SubmissionSubmitted:  "Teslim edildi",
	models.SubmissionLate:       "Geç teslim",
	models.SubmissionGraded:     "Notlandırıldı",
}

// GoalStatusLabel returns the Turkish label of a goal status.
func GoalStatusLabel(status string) string {
	if l, ok := goalStatusLabels[status]; ok {
		return l
	}
	return status
}

// SubmissionStatusLabel returns the Turkish label of a submission status.
func SubmissionStatusLabel(status string) string {
	if l, ok := submissionStatusLabels[status]; ok {
		return l
	}
	return status
}
