// Package profile assembles the read-only detail view of one student.
package profile

import (
	"context"

	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
	"github.com/solomonake/student-crm-dashboard/core/summary"
)

type Profile struct {
	Student      student.Student           `json:"student"`
	Progress     stage.ProgressView        `json:"progress"`
	Summary      summary.Summary           `json:"summary"`
	Interactions []interaction.Interaction `json:"interactions"`
	Notes        []note.Note               `json:"notes"`
	Reminders    []reminder.AgendaItem     `json:"reminders"`
}

type (
	StudentGetter interface {
		Get(ctx context.Context, id string) (student.Student, error)
	}
	InteractionLister interface {
		Query(ctx context.Context, studentID string) ([]interaction.Interaction, error)
	}
	NoteLister interface {
		List(ctx context.Context, studentID string) ([]note.Note, error)
	}
	ReminderAgenda interface {
		Agenda(ctx context.Context, studentID string) ([]reminder.AgendaItem, error)
	}

	Service struct {
		students     StudentGetter
		interactions InteractionLister
		notes        NoteLister
		reminders    ReminderAgenda
		generator    *summary.Generator
	}
)

func NewService(
	students StudentGetter,
	interactions InteractionLister,
	notes NoteLister,
	reminders ReminderAgenda,
	generator *summary.Generator,
) *Service {
	if generator == nil {
		generator = summary.NewGenerator(nil)
	}
	return &Service{
		students:     students,
		interactions: interactions,
		notes:        notes,
		reminders:    reminders,
		generator:    generator,
	}
}

// Summary recomputes the student's summary from the current interaction log.
func (svc *Service) Summary(ctx context.Context, studentID string) (summary.Summary, error) {
	s, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return summary.Summary{}, err
	}
	ins, err := svc.interactions.Query(ctx, studentID)
	if err != nil {
		return summary.Summary{}, errors.Wrap(err, "querying interactions")
	}
	return svc.generator.Summarize(s.ApplicationStatus, ins)
}

// Build reads the student and everything attached to it. Nothing is cached.
func (svc *Service) Build(ctx context.Context, studentID string) (Profile, error) {
	s, err := svc.students.Get(ctx, studentID)
	if err != nil {
		return Profile{}, err
	}
	progress, err := stage.Progress(s.ApplicationStatus)
	if err != nil {
		return Profile{}, err
	}
	ins, err := svc.interactions.Query(ctx, studentID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "querying interactions")
	}
	sum, err := svc.generator.Summarize(s.ApplicationStatus, ins)
	if err != nil {
		return Profile{}, err
	}
	notes, err := svc.notes.List(ctx, studentID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "listing notes")
	}
	agenda, err := svc.reminders.Agenda(ctx, studentID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "listing reminders")
	}
	return Profile{
		Student:      s,
		Progress:     progress,
		Summary:      sum,
		Interactions: ins,
		Notes:        notes,
		Reminders:    agenda,
	}, nil
}
