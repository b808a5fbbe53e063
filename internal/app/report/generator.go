package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Renderer turns report data into a PDF document.
type Renderer interface {
	Name() string
	Render(ctx context.Context, d *Data) ([]byte, error)
}

// Config holds the dependencies of a Generator. Source and Renderer are
// required.
type Config struct {
	Source   Source
	Renderer Renderer
	Now      func() time.Time
	Logger   *zap.Logger
	Retry    RetryConfig
}

// RetryConfig tunes identity lookup retries. Zero values use DefaultRetry.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// Generator runs the report pipeline: fetch, calculate, derive insights,
// render.
type Generator struct {
	fetcher  *Fetcher
	renderer Renderer
	now      func() time.Time
	log      *zap.Logger
}

// NewGenerator wires a Generator from cfg.
func NewGenerator(cfg Config) *Generator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	policy := DefaultRetry
	if cfg.Retry.Attempts > 0 {
		policy.Attempts = cfg.Retry.Attempts
	}
	if cfg.Retry.Backoff > 0 {
		policy.Backoff = cfg.Retry.Backoff
	}
	return &Generator{
		fetcher:  &Fetcher{Source: cfg.Source, Retry: policy, Log: cfg.Logger},
		renderer: cfg.Renderer,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
}

// RendererName reports which renderer the generator was built with.
func (g *Generator) RendererName() string {
	if g.renderer == nil {
		return ""
	}
	return g.renderer.Name()
}

// Build fetches and aggregates the report for req without rendering it.
func (g *Generator) Build(ctx context.Context, req Request) (*Data, error) {
	now := g.now()
	req, err := req.normalized(now)
	if err != nil {
		return nil, err
	}
	b, err := g.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return Assemble(req, b, now), nil
}

// Render builds the report for req and renders it. It returns the document,
// the renderer name and the data it was rendered from.
func (g *Generator) Render(ctx context.Context, req Request) ([]byte, string, *Data, error) {
	d, err := g.Build(ctx, req)
	if err != nil {
		return nil, "", nil, err
	}
	pdf, err := g.RenderData(ctx, d)
	if err != nil {
		return nil, "", d, err
	}
	return pdf, g.renderer.Name(), d, nil
}

// RenderData renders already built data.
func (g *Generator) RenderData(ctx context.Context, d *Data) ([]byte, error) {
	start := time.Now()
	pdf, err := g.renderer.Render(ctx, d)
	metrics.ReportRendered(g.renderer.Name(), err == nil, time.Since(start))
	if err != nil {
		g.log.Error("report render failed",
			zap.String("renderer", g.renderer.Name()),
			zap.String("student_id", d.Student.ID),
			zap.Error(err))
		return nil, err
	}
	g.log.Info("report rendered",
		zap.String("renderer", g.renderer.Name()),
		zap.String("student_id", d.Student.ID),
		zap.Int("bytes", len(pdf)),
		zap.Duration("took", time.Since(start)))
	return pdf, nil
}

// Assemble turns a fetched bundle into report data.
func Assemble(req Request, b *Bundle, now time.Time) *Data {
	m := Calculate(b.Assignments, b.Submissions, b.Goals)
	d := &Data{
		Title:       req.Title,
		GeneratedAt: now,
		From:        req.From,
		To:          req.To,
		Student:     person(b.Student),
		Teacher:     person(b.Teacher),
		Metrics:     m,
		Insights:    GenerateInsights(m, b.Goals),
		Goals:       goalItems(b.Goals),
		Assignments: assignmentItems(b.Assignments, b.Submissions),
		Partial:     b.Partial,
	}
	if d.Title == "" {
		d.Title = fmt.Sprintf("%s - Gelişim Raporu", d.Student.Name)
	}
	if b.Class != nil {
		d.Class = &ClassInfo{ID: b.Class.ID.Hex(), Name: b.Class.Name, Subject: b.Class.Subject}
	}
	return d
}

func person(u *models.User) Person {
	if u == nil {
		return Person{}
	}
	return Person{
		ID:         u.ID.Hex(),
		Name:       u.FullName,
		Email:      u.Email,
		GradeLevel: u.GradeLevel,
		School:     u.School,
	}
}

func goalItems(goals []models.Goal) []GoalItem {
	out := make([]GoalItem, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalItem{
			Title:       g.Title,
			Category:    g.Category,
			Status:      g.Status,
			StatusLabel: GoalStatusLabel(g.Status),
			Progress:    g.Progress,
			TargetDate:  g.TargetDate,
			CompletedAt: g.CompletedAt,
		})
	}
	return out
}

// NotSubmittedLabel marks an assignment with no submission.
const NotSubmittedLabel = "Teslim edilmedi"

func assignmentItems(assignments []models.Assignment, submissions []models.AssignmentSubmission) []AssignmentItem {
	byAssignment := make(map[primitive.ObjectID]models.AssignmentSubmission, len(submissions))
	for _, s := range submissions {
		if prev, ok := byAssignment[s.AssignmentID]; ok && !s.UpdatedAt.After(prev.UpdatedAt) {
			continue
		}
		byAssignment[s.AssignmentID] = s
	}

	out := make([]AssignmentItem, 0, len(assignments))
	for _, a := range assignments {
		it := AssignmentItem{
			Title:       a.Title,
			Subject:     normalize.Subject(a.Subject),
			DueDate:     a.DueDate,
			StatusLabel: NotSubmittedLabel,
			MaxGrade:    a.Grading.MaxGrade,
		}
		if s, ok := byAssignment[a.ID]; ok {
			it.Status = s.Status
			it.StatusLabel = SubmissionStatusLabel(s.Status)
			it.IsLate = s.IsLate
			if s.IsGraded() {
				it.Grade = s.Grade
			}
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}
