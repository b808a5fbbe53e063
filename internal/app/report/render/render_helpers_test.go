package render

import (
	"fmt"
	"time"

	"github.com/dalemusser/coachhub/internal/app/report"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var generatedAt = time.Date(2025, time.June, 15, 14, 0, 0, 0, time.UTC)

// sampleData builds report data through the real assembly path.
func sampleData(assignments int) *report.Data {
	student := &models.User{ID: primitive.NewObjectID(), FullName: "Ayşe Yılmaz", Email: "ayse@example.com", Role: models.RoleStudent, GradeLevel: "9", School: "Atatürk Lisesi"}
	teacher := &models.User{ID: primitive.NewObjectID(), FullName: "Mehmet Öztürk", Role: models.RoleTeacher}

	b := &report.Bundle{Student: student, Teacher: teacher, Class: &models.Class{ID: primitive.NewObjectID(), Name: "9-A"}}
	subjects := []string{"Matematik", "Fizik", ""}
	for i := 0; i < assignments; i++ {
		due := time.Date(2025, time.Month(1+i%6), 1+i%28, 12, 0, 0, 0, time.UTC)
		a := models.Assignment{
			ID:      primitive.NewObjectID(),
			Title:   fmt.Sprintf("Ödev %d", i+1),
			Subject: subjects[i%len(subjects)],
			DueDate: due,
			Grading: models.GradingPolicy{MaxGrade: 100},
		}
		b.Assignments = append(b.Assignments, a)
		if i%3 == 2 {
			continue
		}
		g := float64(50 + (i*7)%50)
		b.Submissions = append(b.Submissions, models.AssignmentSubmission{
			ID:           primitive.NewObjectID(),
			AssignmentID: a.ID,
			Status:       models.SubmissionGraded,
			Grade:        &g,
			SubmittedAt:  &due,
			UpdatedAt:    due,
		})
	}
	target := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	b.Goals = []models.Goal{
		{Title: "Her gün 30 dakika kitap okumak", Status: models.GoalInProgress, Progress: 60, TargetDate: &target},
		{Title: "Çarpım tablosunu ezberlemek", Status: models.GoalCompleted, Progress: 100},
	}

	req := report.Request{
		StudentID: student.ID,
		TeacherID: teacher.ID,
		From:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
	return report.Assemble(req, b, generatedAt)
}

var orderedTitles = []string{
	TitleInfo,
	TitleSummary,
	TitleSubjects,
	TitleMonthly,
	TitleGoals,
	TitleAssignments,
	TitleInsights,
}
