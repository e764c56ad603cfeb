package reminder

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/solomonake/student-crm-dashboard/core"
)

type Reminder struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"` // due date, UTC
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
	UserID    string    `json:"userId"`
}

// IsOverdue reports whether the reminder is still open and its due date has passed.
func (r Reminder) IsOverdue(now time.Time) bool {
	return !r.Completed && r.Date.Before(now)
}

// Edited reports whether the title or date changed after creation. Toggling counts as a change.
func (r Reminder) Edited() bool { return !r.UpdatedAt.Equal(r.CreatedAt) }

// ReminderInput is the body of reminder create and update requests.
type ReminderInput struct {
	Title string     `json:"title" validate:"required,notblank"`
	Date  *time.Time `json:"date" validate:"required"`
}

func (in *ReminderInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	if in.Date != nil && in.Date.IsZero() {
		in.Date = nil
	}
	return validate.Struct(in)
}

// AgendaItem is a reminder as shown on the agenda.
type AgendaItem struct {
	Reminder
	Overdue bool `json:"overdue"`
}

// Agenda orders reminders overdue first, then by due date. Completed reminders are never overdue.
func Agenda(reminders []Reminder, now time.Time) []AgendaItem {
	items := make([]AgendaItem, 0, len(reminders))
	for _, r := range reminders {
		items = append(items, AgendaItem{Reminder: r, Overdue: r.IsOverdue(now)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Overdue != items[j].Overdue {
			return items[i].Overdue
		}
		return items[i].Date.Before(items[j].Date)
	})
	return items
}

// Overdue keeps the open reminders whose due date has passed.
func Overdue(reminders []Reminder, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	for _, r := range reminders {
		if r.IsOverdue(now) {
			out = append(out, r)
		}
	}
	return out
}
