// Package notify creates in-app notifications for domain events.
//
// Delivery is best effort: failures are logged and never fail the request
// that triggered them.
package notify

import (
	"context"

	notificationstore "github.com/dalemusser/coachhub/internal/app/store/notifications"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Notifier writes notifications for assignment, goal and report events.
type Notifier struct {
	store *notificationstore.Store
	users *userstore.Store
	log   *zap.Logger
}

// New creates a Notifier over db.
func New(db *mongo.Database, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		store: notificationstore.New(db),
		users: userstore.New(db),
		log:   logger,
	}
}

func (n *Notifier) send(ctx context.Context, note models.Notification) {
	if _, err := n.store.Create(ctx, note); err != nil {
		n.log.Warn("notification not delivered",
			zap.String("type", note.Type),
			zap.String("user_id", note.UserID.Hex()),
			zap.Error(err))
	}
}

// AssignmentCreated tells each student about newly published work.
func (n *Notifier) AssignmentCreated(ctx context.Context, a models.Assignment, studentIDs []primitive.ObjectID) {
	for _, id := range studentIDs {
		n.send(ctx, models.Notification{
			UserID: id,
			Type:   models.NotifyAssignmentCreated,
			AssignmentCreated: &models.AssignmentCreatedPayload{
				AssignmentID: a.ID,
				Title:        a.Title,
				DueDate:      a.DueDate,
			},
		})
	}
}

// AssignmentGraded tells the student their submission has a grade.
func (n *Notifier) AssignmentGraded(ctx context.Context, a *models.Assignment, sub models.AssignmentSubmission) {
	if sub.Grade == nil {
		return
	}
	n.send(ctx, models.Notification{
		UserID: sub.StudentID,
		Type:   models.NotifyAssignmentGraded,
		AssignmentGraded: &models.AssignmentGradedPayload{
			AssignmentID: a.ID,
			SubmissionID: sub.ID,
			Title:        a.Title,
			Grade:        *sub.Grade,
		},
	})
}

// GoalCompleted tells the student's parents when a goal flagged for parent
// notification is completed.
func (n *Notifier) GoalCompleted(ctx context.Context, g models.Goal) {
	if !g.NotifyParent || g.Status != models.GoalCompleted {
		return
	}
	studentName := ""
	if st, err := n.users.GetByID(ctx, g.StudentID); err == nil {
		studentName = st.FullName
	}
	for _, p := range n.parents(ctx, g.StudentID) {
		n.send(ctx, models.Notification{
			UserID: p.ID,
			Type:   models.NotifyGoalCompleted,
			GoalCompleted: &models.GoalCompletedPayload{
				GoalID:      g.ID,
				StudentID:   g.StudentID,
				StudentName: studentName,
				Title:       g.Title,
			},
		})
	}
}

// ReportShared tells the student's parents about a public report link.
func (n *Notifier) ReportShared(ctx context.Context, rep models.Report) {
	if !rep.IsPublic || rep.ShareToken == nil {
		return
	}
	for _, p := range n.parents(ctx, rep.StudentID) {
		n.send(ctx, models.Notification{
			UserID: p.ID,
			Type:   models.NotifyReportShared,
			ReportShared: &models.ReportSharedPayload{
				ReportID:   rep.ID,
				StudentID:  rep.StudentID,
				ShareToken: *rep.ShareToken,
			},
		})
	}
}

func (n *Notifier) parents(ctx context.Context, studentID primitive.ObjectID) []models.User {
	ps, err := n.users.ListParentsOf(ctx, studentID)
	if err != nil {
		n.log.Warn("could not load parents for notification",
			zap.String("student_id", studentID.Hex()),
			zap.Error(err))
		return nil
	}
	return ps
}
