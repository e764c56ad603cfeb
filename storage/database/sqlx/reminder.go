package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/reminder"
)

const reminderColumns = "id, student_id, title, date, completed, created_at, updated_at, user_id"

type reminderRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Title     string    `db:"title"`
	Date      time.Time `db:"date"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	UserID    string    `db:"user_id"`
}

func (r reminderRow) reminder() reminder.Reminder {
	return reminder.Reminder{
		ID:        r.ID,
		StudentID: r.StudentID,
		Title:     r.Title,
		Date:      r.Date.UTC(),
		Completed: r.Completed,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		UserID:    r.UserID,
	}
}

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

func (repo reminderRepository) SaveReminder(ctx context.Context, r reminder.Reminder) (reminder.Reminder, error) {
	q := `INSERT INTO reminder (` + reminderColumns + `)
		VALUES (:id, :student_id, :title, :date, :completed, :created_at, :updated_at, :user_id)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, date = EXCLUDED.date, completed = EXCLUDED.completed, updated_at = EXCLUDED.updated_at`
	row := reminderRow{
		ID:        r.ID,
		StudentID: r.StudentID,
		Title:     r.Title,
		Date:      r.Date.UTC(),
		Completed: r.Completed,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		UserID:    r.UserID,
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return reminder.Reminder{}, errors.Wrap(err, "upserting reminder")
	}
	return r, nil
}

func (repo reminderRepository) GetReminder(ctx context.Context, studentID, id string) (reminder.Reminder, error) {
	var r reminderRow
	q := `SELECT ` + reminderColumns + ` FROM reminder WHERE id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &r, q, id, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminder.Reminder{}, reminder.ErrNotFound
		}
		return reminder.Reminder{}, errors.Wrap(err, "selecting reminder")
	}
	return r.reminder(), nil
}

func (repo reminderRepository) selectReminders(ctx context.Context, msg, q string, args ...interface{}) ([]reminder.Reminder, error) {
	var rows []reminderRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	reminders := make([]reminder.Reminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, r.reminder())
	}
	return reminders, nil
}

func (repo reminderRepository) QueryReminders(ctx context.Context, studentID string) ([]reminder.Reminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM reminder WHERE student_id = $1 ORDER BY created_at DESC, id ASC`
	return repo.selectReminders(ctx, "selecting reminders", q, studentID)
}

func (repo reminderRepository) QueryOpenReminders(ctx context.Context, before time.Time) ([]reminder.Reminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM reminder WHERE NOT completed AND date < $1 ORDER BY date ASC, id ASC`
	return repo.selectReminders(ctx, "selecting open reminders", q, before.UTC())
}

func (repo reminderRepository) DeleteReminder(ctx context.Context, studentID, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM reminder WHERE id = $1 AND student_id = $2`, id, studentID)
	return errors.Wrap(err, "deleting reminder")
}
