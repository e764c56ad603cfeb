package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/solomonake/student-crm-dashboard/core/reminder"
)

type reminderRepository struct {
	db *reminderTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db.reminder}
}

func (repo *reminderRepository) SaveReminder(_ context.Context, r reminder.Reminder) (reminder.Reminder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *reminderRepository) GetReminder(_ context.Context, studentID, id string) (reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok && r.StudentID == studentID {
		return *r, nil
	}
	return reminder.Reminder{}, reminder.ErrNotFound
}

func (repo *reminderRepository) QueryReminders(_ context.Context, studentID string) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reminders := make([]reminder.Reminder, 0)
	for _, r := range repo.db.table {
		if r.StudentID == studentID {
			reminders = append(reminders, *r)
		}
	}
	sort.Slice(reminders, func(i, j int) bool {
		if reminders[i].CreatedAt.Equal(reminders[j].CreatedAt) {
			return reminders[i].ID < reminders[j].ID
		}
		return reminders[i].CreatedAt.After(reminders[j].CreatedAt)
	})
	return reminders, nil
}

func (repo *reminderRepository) QueryOpenReminders(_ context.Context, before time.Time) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reminders := make([]reminder.Reminder, 0)
	for _, r := range repo.db.table {
		if !r.Completed && r.Date.Before(before) {
			reminders = append(reminders, *r)
		}
	}
	sort.Slice(reminders, func(i, j int) bool {
		if reminders[i].Date.Equal(reminders[j].Date) {
			return reminders[i].ID < reminders[j].ID
		}
		return reminders[i].Date.Before(reminders[j].Date)
	})
	return reminders, nil
}

func (repo *reminderRepository) DeleteReminder(_ context.Context, studentID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if r, ok := repo.db.table[id]; ok && r.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}
