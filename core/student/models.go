package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

type Student struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone,omitempty"`
	Grade             string      `json:"grade,omitempty"`
	Country           string      `json:"country"`
	ApplicationStatus stage.Stage `json:"applicationStatus"`
	LastActive        time.Time   `json:"lastActive"` // UTC
	CreatedAt         time.Time   `json:"createdAt"`  // UTC
	UpdatedAt         time.Time   `json:"updatedAt"`  // UTC
}

// IsHighIntent reports whether the student is applying or has submitted.
func (s Student) IsHighIntent() bool {
	return s.ApplicationStatus == stage.Applying || s.ApplicationStatus == stage.Submitted
}

// IsStale reports whether the student was last active strictly before `days` days ago.
func (s Student) IsStale(now time.Time, days int) bool {
	return s.LastActive.Before(StaleCutoff(now, days))
}

// StaleCutoff is the instant `days` days before now.
func StaleCutoff(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// NewStudent contains information needed to enroll a Student.
type NewStudent struct {
	Name              string    `json:"name" validate:"required,notblank"`
	Email             string    `json:"email" validate:"required,email"`
	Phone             string    `json:"phone"`
	Grade             string    `json:"grade"`
	Country           string    `json:"country" validate:"required,notblank"`
	ApplicationStatus string    `json:"applicationStatus" validate:"omitempty,stage"`
	LastActive        time.Time `json:"lastActive"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Country = core.CleanString(ns.Country)
	ns.ApplicationStatus = core.CleanString(ns.ApplicationStatus, true /* lower */)
	return validate.Struct(ns)
}

// ChangeStage is the body of a stage change request.
type ChangeStage struct {
	Stage string `json:"stage" validate:"required,stage"`
}

func (cs *ChangeStage) Validate(validate *validator.Validate) error {
	cs.Stage = core.CleanString(cs.Stage, true /* lower */)
	return validate.Struct(cs)
}
