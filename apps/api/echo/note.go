package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/note"
)

func (api *studentApi) queryNotes(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	notes, err := api.notes.List(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "listing notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *studentApi) createNote(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data note.NoteInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NoteInput")
	}

	n, err := api.notes.Create(ctx.Request().Context(), s.ID, p.UID, data)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *studentApi) updateNote(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var data note.NoteInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NoteInput")
	}

	n, err := api.notes.Update(ctx.Request().Context(), s.ID, ctx.Param("noteID"), data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *studentApi) destroyNote(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.notes.Delete(ctx.Request().Context(), s.ID, ctx.Param("noteID")); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}
