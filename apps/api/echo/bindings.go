package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

const orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other`. Unknown fields are dropped; none left means name ascending.
func (ord *Ordering) Bind(ctx echo.Context) {
	ord.Orderings = student.ParseOrderings(ctx.QueryParam(orderingParam))
}

// bindStudentQuery reads the list filters from the query string.
func bindStudentQuery(ctx echo.Context) (student.Query, error) {
	q := student.Query{
		Search: ctx.QueryParam("search"),
		Status: ctx.QueryParam("status"),
	}
	var flds []core.FieldError
	boolParam := func(name string, dst *bool) {
		if raw := ctx.QueryParam(name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				flds = append(flds, core.FieldError{Field: name, Error: "must be true or false"})
				return
			}
			*dst = v
		}
	}
	boolParam("stale", &q.Stale)
	boolParam("high_intent", &q.HighIntent)
	if raw := ctx.QueryParam("stale_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			flds = append(flds, core.FieldError{Field: "stale_days", Error: "must be a positive number of days"})
		} else {
			q.StaleDays = days
		}
		// stale_days alone implies stale
		if stale, err := strconv.ParseBool(ctx.QueryParam("stale")); err == nil && !stale && q.StaleDays > 0 {
			flds = append(flds, core.FieldError{Field: "stale_days", Error: "cannot be used with stale=false"})
		}
	}
	if len(flds) > 0 {
		return student.Query{}, core.NewValidationError(nil, flds...)
	}
	return q, nil
}
