package student

import (
	"time"

	"github.com/solomonake/student-crm-dashboard/core/stage"
)

// Stats is the dashboard overview of the pipeline.
type Stats struct {
	Total        int `json:"total"`
	Exploring    int `json:"exploring"`
	Shortlisting int `json:"shortlisting"`
	Applying     int `json:"applying"`
	Submitted    int `json:"submitted"`
	NotContacted int `json:"notContacted"` // stale for StaleDays
	StaleDays    int `json:"staleDays"`
	HighIntent   int `json:"highIntent"`
}

func ComputeStats(students []Student, now time.Time, staleDays int) Stats {
	st := Stats{Total: len(students), StaleDays: staleDays}
	for _, s := range students {
		switch s.ApplicationStatus {
		case stage.Exploring:
			st.Exploring++
		case stage.Shortlisting:
			st.Shortlisting++
		case stage.Applying:
			st.Applying++
		case stage.Submitted:
			st.Submitted++
		}
		if s.IsStale(now, staleDays) {
			st.NotContacted++
		}
		if s.IsHighIntent() {
			st.HighIntent++
		}
	}
	return st
}
