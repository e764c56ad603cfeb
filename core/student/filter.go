package student

import (
	"strings"
	"time"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// DefaultStaleDays is used when a stale filter is requested without a threshold.
const DefaultStaleDays = 7

// Search keeps the students whose name, email or country contains term, ignoring case.
// An empty term returns students unchanged.
func Search(students []Student, term string) []Student {
	term = strings.TrimSpace(term)
	if term == "" {
		return students
	}
	return keep(students, func(s Student) bool { return matchesSearch(s, term) })
}

// FilterByStatus keeps the students in the given stage; "all" (or "") keeps everyone.
func FilterByStatus(students []Student, status string) ([]Student, error) {
	status = core.CleanString(status, true /* lower */)
	if status == "" || status == StatusAll {
		return students, nil
	}
	st, err := stage.Parse(status)
	if err != nil {
		return nil, err
	}
	return keep(students, func(s Student) bool { return s.ApplicationStatus == st }), nil
}

// FilterStale keeps the students whose lastActive is strictly before now - days.
func FilterStale(students []Student, now time.Time, days int) []Student {
	return keep(students, func(s Student) bool { return s.IsStale(now, days) })
}

// FilterHighIntent keeps the students applying or submitted.
func FilterHighIntent(students []Student) []Student {
	return keep(students, Student.IsHighIntent)
}

func matchesSearch(s Student, term string) bool {
	return core.ContainsFold(s.Name, term) || core.ContainsFold(s.Email, term) || core.ContainsFold(s.Country, term)
}

func keep(students []Student, pred func(Student) bool) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// Query combines the list filters with AND. The zero Query matches everyone.
type Query struct {
	Search     string `query:"search"`
	Status     string `query:"status"`
	Stale      bool   `query:"stale"`
	StaleDays  int    `query:"stale_days"`
	HighIntent bool   `query:"high_intent"`

	// Now is the reference instant of the stale filter.
	Now time.Time `query:"-"`
}

// Clean normalizes the query and rejects an unknown status.
func (q *Query) Clean(now time.Time, defaultStaleDays int) error {
	q.Search = core.CleanString(q.Search)
	q.Status = core.CleanString(q.Status, true /* lower */)
	if q.Status == StatusAll {
		q.Status = ""
	}
	if q.Status != "" {
		if _, err := stage.Parse(q.Status); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
		}
	}
	if q.StaleDays > 0 {
		q.Stale = true
	} else {
		q.StaleDays = defaultStaleDays
		if q.StaleDays <= 0 {
			q.StaleDays = DefaultStaleDays
		}
	}
	if q.Now.IsZero() {
		q.Now = now
	}
	return nil
}

// IsEmpty reports whether the query filters nothing out.
func (q Query) IsEmpty() bool {
	return q.Search == "" && (q.Status == "" || q.Status == StatusAll) && !q.Stale && !q.HighIntent
}

// Matches reports whether s satisfies every filter of the query.
// It expects a cleaned Query.
func (q Query) Matches(s Student) bool {
	if q.Search != "" && !matchesSearch(s, q.Search) {
		return false
	}
	if q.Status != "" && q.Status != StatusAll && string(s.ApplicationStatus) != q.Status {
		return false
	}
	if q.Stale && !s.IsStale(q.Now, q.staleDays()) {
		return false
	}
	if q.HighIntent && !s.IsHighIntent() {
		return false
	}
	return true
}

func (q Query) staleDays() int {
	if q.StaleDays > 0 {
		return q.StaleDays
	}
	return DefaultStaleDays
}

// Apply keeps the matching students, in their original order.
func (q Query) Apply(students []Student) []Student {
	if q.IsEmpty() {
		return students
	}
	return keep(students, q.Matches)
}

// StaleBefore is the lastActive cutoff used by stores that push the stale filter down.
func (q Query) StaleBefore() time.Time {
	return StaleCutoff(q.Now, q.staleDays())
}
