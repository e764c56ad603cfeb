package reminder

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
)

var (
	nowFunc = core.UTCNow // mockable

	ErrNotFound = core.NotFound("reminder")
)

type (
	Repository interface {
		// SaveReminder inserts or replaces the reminder with the same ID.
		SaveReminder(ctx context.Context, r Reminder) (Reminder, error)
		GetReminder(ctx context.Context, studentID, id string) (Reminder, error)
		// QueryReminders returns the student's reminders, newest first.
		QueryReminders(ctx context.Context, studentID string) ([]Reminder, error)
		// QueryOpenReminders returns the incomplete reminders of every student due before `before`, by due date.
		QueryOpenReminders(ctx context.Context, before time.Time) ([]Reminder, error)
		// DeleteReminder succeeds when the reminder does not exist.
		DeleteReminder(ctx context.Context, studentID, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, studentID, actor string, in ReminderInput) (Reminder, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Reminder{}, err
	}
	now := nowFunc()
	r := Reminder{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Title:     in.Title,
		Date:      in.Date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    actor,
	}
	saved, err := svc.repo.SaveReminder(ctx, r)
	return saved, errors.Wrap(err, "saving reminder")
}

func (svc *Service) List(ctx context.Context, studentID string) ([]Reminder, error) {
	return svc.repo.QueryReminders(ctx, studentID)
}

// Agenda lists the student's reminders overdue first, then by due date.
func (svc *Service) Agenda(ctx context.Context, studentID string) ([]AgendaItem, error) {
	reminders, err := svc.repo.QueryReminders(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return Agenda(reminders, nowFunc()), nil
}

// Update rewrites title and date; the completed flag is left alone.
func (svc *Service) Update(ctx context.Context, studentID, id string, in ReminderInput) (Reminder, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Reminder{}, err
	}
	r, err := svc.repo.GetReminder(ctx, studentID, id)
	if err != nil {
		return Reminder{}, err
	}
	r.Title = in.Title
	r.Date = in.Date.UTC()
	r.UpdatedAt = nowFunc()
	saved, err := svc.repo.SaveReminder(ctx, r)
	return saved, errors.Wrap(err, "saving reminder")
}

// Toggle flips the completed flag.
func (svc *Service) Toggle(ctx context.Context, studentID, id string) (Reminder, error) {
	r, err := svc.repo.GetReminder(ctx, studentID, id)
	if err != nil {
		return Reminder{}, err
	}
	r.Completed = !r.Completed
	r.UpdatedAt = nowFunc()
	saved, err := svc.repo.SaveReminder(ctx, r)
	return saved, errors.Wrap(err, "saving reminder")
}

// Delete removes the reminder; deleting a missing reminder is not an error.
func (svc *Service) Delete(ctx context.Context, studentID, id string) error {
	return svc.repo.DeleteReminder(ctx, studentID, id)
}
