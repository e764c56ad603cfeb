package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/reminder"
)

func (api *studentApi) queryReminders(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	if ctx.QueryParam("view") == "agenda" {
		agenda, err := api.reminders.Agenda(rctx, s.ID)
		if err != nil {
			return errors.Wrap(err, "building agenda")
		}
		return ctx.JSON(http.StatusOK, agenda)
	}

	reminders, err := api.reminders.List(rctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "listing reminders")
	}
	if reminders == nil {
		reminders = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, reminders)
}

func (api *studentApi) createReminder(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data reminder.ReminderInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReminderInput")
	}

	r, err := api.reminders.Create(ctx.Request().Context(), s.ID, p.UID, data)
	if err != nil {
		return errors.Wrap(err, "creating reminder")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *studentApi) updateReminder(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var data reminder.ReminderInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReminderInput")
	}

	r, err := api.reminders.Update(ctx.Request().Context(), s.ID, ctx.Param("reminderID"), data)
	if err != nil {
		return errors.Wrap(err, "updating reminder")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *studentApi) toggleReminder(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	r, err := api.reminders.Toggle(ctx.Request().Context(), s.ID, ctx.Param("reminderID"))
	if err != nil {
		return errors.Wrap(err, "toggling reminder")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *studentApi) destroyReminder(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.reminders.Delete(ctx.Request().Context(), s.ID, ctx.Param("reminderID")); err != nil {
		return errors.Wrap(err, "deleting reminder")
	}
	return ctx.NoContent(http.StatusNoContent)
}
