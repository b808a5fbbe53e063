package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/retry"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Peripheral collection names, as reported in Bundle.Partial.
const (
	PartClass       = "classes"
	PartAssignments = "assignments"
	PartSubmissions = "assignment_submissions"
	PartGoals       = "goals"
)

// Fetcher loads a Bundle from a Source.
//
// The student and teacher are required: transient failures loading them are
// retried, and anything else fails the fetch. The class, assignments,
// submissions and goals are loaded concurrently and a failure in any of them
// leaves that part empty.
type Fetcher struct {
	Source Source
	Retry  retry.Policy
	Log    *zap.Logger
}

// DefaultRetry retries identity lookups three times with linear backoff.
var DefaultRetry = retry.Policy{Attempts: 3, Backoff: 100 * time.Millisecond}

// Fetch loads everything a report for req needs. req must already carry a
// normalized range.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Bundle, error) {
	var b Bundle

	idg, idctx := errgroup.WithContext(ctx)
	idg.Go(func() error {
		u, err := f.identity(idctx, req.StudentID, models.RoleStudent)
		b.Student = u
		return err
	})
	idg.Go(func() error {
		u, err := f.identity(idctx, req.TeacherID, models.RoleTeacher)
		b.Teacher = u
		return err
	})
	if err := idg.Wait(); err != nil {
		return nil, err
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	partial := func(part string, err error) {
		f.log().Warn("report fetch incomplete",
			zap.String("collection", part),
			zap.String("student_id", req.StudentID.Hex()),
			zap.Error(err))
		metrics.ReportPartialFetch(part)
		mu.Lock()
		b.Partial = append(b.Partial, part)
		mu.Unlock()
	}

	g.Go(func() error {
		c, err := f.Source.ClassFor(ctx, req.StudentID, req.TeacherID)
		if err != nil {
			partial(PartClass, err)
			return nil
		}
		b.Class = c
		return nil
	})
	g.Go(func() error {
		as, err := f.Source.Assignments(ctx, req.StudentID, req.From, req.To)
		if err != nil {
			partial(PartAssignments, err)
			return nil
		}
		b.Assignments = as
		return nil
	})
	g.Go(func() error {
		ss, err := f.Source.Submissions(ctx, req.StudentID, req.From, req.To)
		if err != nil {
			partial(PartSubmissions, err)
			return nil
		}
		b.Submissions = ss
		return nil
	})
	g.Go(func() error {
		gs, err := f.Source.Goals(ctx, req.StudentID, req.From, req.To)
		if err != nil {
			partial(PartGoals, err)
			return nil
		}
		b.Goals = gs
		return nil
	})
	_ = g.Wait()

	return &b, nil
}

func (f *Fetcher) identity(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	p := f.Retry
	if p.Attempts == 0 {
		p = DefaultRetry
	}
	p.Retryable = transient
	p.OnRetry = func(attempt int, err error) {
		f.log().Warn("retrying report identity lookup",
			zap.String("role", role),
			zap.String("id", id.Hex()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		metrics.ReportFetchRetried()
	}

	var u *models.User
	err := retry.Do(ctx, p, func(ctx context.Context) error {
		got, err := f.Source.User(ctx, id)
		if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && got == nil) {
			return identityError(role, KindNotFound)
		}
		if err != nil {
			return err
		}
		if got.Role != role {
			return identityError(role, KindWrongRole)
		}
		if !got.IsActive {
			return identityError(role, KindInactive)
		}
		u = got
		return nil
	})
	return u, err
}

func transient(err error) bool {
	if IsIdentityError(err) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (f *Fetcher) log() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}
