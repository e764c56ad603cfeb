// Package inmemdb keeps every aggregate in mutex-guarded maps. It backs demo mode and the tests.
package inmemdb

import (
	"sync"

	"github.com/solomonake/student-crm-dashboard/core/identity"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

type (
	DB struct {
		student     *studentTable
		interaction *interactionTable
		note        *noteTable
		reminder    *reminderTable
		account     *accountTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	interactionTable struct {
		sync.RWMutex
		table map[string][]interaction.Interaction // {studentID: append order}
	}

	noteTable struct {
		sync.RWMutex
		table map[string]*note.Note
	}

	reminderTable struct {
		sync.RWMutex
		table map[string]*reminder.Reminder
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*identity.Account
	}
)

func Open() *DB {
	return &DB{
		student:     &studentTable{table: make(map[string]*student.Student)},
		interaction: &interactionTable{table: make(map[string][]interaction.Interaction)},
		note:        &noteTable{table: make(map[string]*note.Note)},
		reminder:    &reminderTable{table: make(map[string]*reminder.Reminder)},
		account:     &accountTable{table: make(map[string]*identity.Account)},
	}
}

// Reset drops every record.
func (db *DB) Reset() {
	db.student.Lock()
	db.student.table = make(map[string]*student.Student)
	db.student.Unlock()

	db.interaction.Lock()
	db.interaction.table = make(map[string][]interaction.Interaction)
	db.interaction.Unlock()

	db.note.Lock()
	db.note.table = make(map[string]*note.Note)
	db.note.Unlock()

	db.reminder.Lock()
	db.reminder.table = make(map[string]*reminder.Reminder)
	db.reminder.Unlock()

	db.account.Lock()
	db.account.table = make(map[string]*identity.Account)
	db.account.Unlock()
}
