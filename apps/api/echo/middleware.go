package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

const contextStudentKey = "student"

var errStudentNotFoundInCtx = errors.New("student object not found in echo.Context")

// studentMiddleware loads the `:id` student into the context, or answers 404.
func studentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by ID")
			}
			ctx.Set(contextStudentKey, s)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	if s, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return s, nil
	}
	return student.Student{}, errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
}
