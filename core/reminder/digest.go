package reminder

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
)

const (
	digestTemplate = "reminder_digest"
	digestSubject  = "Your reminders"
	dueLayout      = "Mon Jan 2 2006, 15:04 MST"
)

type (
	DigestItem struct {
		ReminderID string
		StudentID  string
		Student    string
		Title      string
		Due        string
	}

	// Digest groups a counselor's open reminders for an email.
	Digest struct {
		Overdue  []DigestItem
		Upcoming []DigestItem
	}

	// StudentNamer resolves a student id to a display name; unknown ids may return "".
	StudentNamer func(ctx context.Context, studentID string) string
)

func (d Digest) IsEmpty() bool { return len(d.Overdue) == 0 && len(d.Upcoming) == 0 }

// Message builds the digest email; it is rendered by the EmailService.
func (d Digest) Message(to ...mail.Address) *core.EmailMessage {
	return &core.EmailMessage{
		To:           to,
		Subject:      digestSubject,
		TemplateName: digestTemplate,
		TemplateData: d,
	}
}

// BuildDigest collects the open reminders due before now+horizon, split into overdue and upcoming.
func (svc *Service) BuildDigest(ctx context.Context, horizon time.Duration, name StudentNamer) (Digest, error) {
	now := nowFunc()
	open, err := svc.repo.QueryOpenReminders(ctx, now.Add(horizon))
	if err != nil {
		return Digest{}, errors.Wrap(err, "querying open reminders")
	}

	var d Digest
	for _, r := range open {
		item := DigestItem{
			ReminderID: r.ID,
			StudentID:  r.StudentID,
			Student:    r.StudentID,
			Title:      r.Title,
			Due:        r.Date.Format(dueLayout),
		}
		if name != nil {
			if n := name(ctx, r.StudentID); n != "" {
				item.Student = n
			}
		}
		if r.IsOverdue(now) {
			d.Overdue = append(d.Overdue, item)
		} else {
			d.Upcoming = append(d.Upcoming, item)
		}
	}
	return d, nil
}
