package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

var (
	nowFunc = core.UTCNow // mockable

	// errors
	ErrNotFound        = core.NotFound("student")
	ErrStageRegression = errors.New("moving a student back to an earlier stage is not allowed")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// FilterStudents applies the cleaned Query (AND of its filters) and sorts by orderings.
		FilterStudents(ctx context.Context, q Query, orderings ...core.DBOrdering) ([]Student, error)
		// UpdateStudent overwrites the stored record (last write wins).
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		interaction.ActivityRecorder
	}

	// StageLogger records stage changes on the student's timeline.
	StageLogger interface {
		LogStageChange(ctx context.Context, studentID, actor string, from, to stage.Stage, at time.Time) (interaction.Interaction, error)
	}

	Service struct {
		repo            Repository
		stageLog        StageLogger
		validate        *validator.Validate
		staleDays       int
		allowRegression bool
	}
)

func NewService(repo Repository, stageLog StageLogger, validate *validator.Validate, conf core.PipelineConfig) *Service {
	staleDays := conf.StaleThresholdDays
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}
	return &Service{
		repo:            repo,
		stageLog:        stageLog,
		validate:        validate,
		staleDays:       staleDays,
		allowRegression: conf.AllowStageRegression,
	}
}

func (svc *Service) StaleDays() int { return svc.staleDays }

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	status := stage.Exploring
	if ns.ApplicationStatus != "" {
		status = stage.Stage(ns.ApplicationStatus)
	}
	now := nowFunc()
	lastActive := now
	if !ns.LastActive.IsZero() {
		lastActive = ns.LastActive.UTC()
	}
	s := Student{
		ID:                uuid.NewString(),
		Name:              ns.Name,
		Email:             ns.Email,
		Phone:             ns.Phone,
		Grade:             ns.Grade,
		Country:           ns.Country,
		ApplicationStatus: status,
		LastActive:        lastActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	saved, err := svc.repo.CreateStudent(ctx, s)
	return saved, errors.Wrap(err, "creating student")
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// Query cleans q and lists the matching students. An empty q lists everyone.
func (svc *Service) Query(ctx context.Context, q Query, orderings ...core.DBOrdering) ([]Student, error) {
	if err := q.Clean(nowFunc(), svc.staleDays); err != nil {
		return nil, err
	}
	if len(orderings) == 0 {
		orderings = DefaultOrdering
	}
	students, err := svc.repo.FilterStudents(ctx, q, orderings...)
	if err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return students, nil
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	students, err := svc.repo.FilterStudents(ctx, Query{})
	if err != nil {
		return Stats{}, errors.Wrap(err, "listing students")
	}
	return ComputeStats(students, nowFunc(), svc.staleDays), nil
}

// ChangeStage moves the student to stage `to` and logs a stage_change interaction.
// Moving to the current stage is a no-op. Moving backwards fails with ErrStageRegression
// unless regression is allowed.
func (svc *Service) ChangeStage(ctx context.Context, id, to, actor string) (Student, error) {
	target, err := stage.Parse(to)
	if err != nil {
		return Student{}, err
	}
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}

	dir, err := stage.Transition(s.ApplicationStatus, target)
	if err != nil {
		return Student{}, errors.Wrap(err, "stored student has an invalid stage")
	}
	switch {
	case dir == stage.Unchanged:
		return s, nil
	case dir == stage.Backward && !svc.allowRegression:
		return Student{}, core.NewValidationError(ErrStageRegression, core.FieldError{Field: "stage", Error: ErrStageRegression.Error()})
	}

	prev, from := s, s.ApplicationStatus
	now := nowFunc()
	s.ApplicationStatus = target
	s.UpdatedAt = now
	if now.After(s.LastActive) {
		s.LastActive = now
	}
	if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	if _, err = svc.stageLog.LogStageChange(ctx, s.ID, actor, from, target, now); err != nil {
		// the stage only moves together with its timeline entry
		if _, rerr := svc.repo.UpdateStudent(ctx, prev); rerr != nil {
			return Student{}, errors.Wrapf(err, "logging stage change (restoring %s failed: %v)", from, rerr)
		}
		return Student{}, errors.Wrap(err, "logging stage change")
	}
	return s, nil
}
