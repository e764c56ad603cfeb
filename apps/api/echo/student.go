package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/profile"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

type studentApi struct {
	students     *student.Service
	interactions *interaction.Service
	notes        *note.Service
	reminders    *reminder.Service
	profiles     *profile.Service
	validate     *validator.Validate
}

func registerStudentAPI(g *echo.Group, deps *Deps, validate *validator.Validate) {
	api := studentApi{
		students:     deps.Students,
		interactions: deps.Interactions,
		notes:        deps.Notes,
		reminders:    deps.Reminders,
		profiles:     deps.Profiles,
		validate:     validate,
	}

	g.GET("", api.query)
	g.POST("", api.create)
	g.GET("/stats", api.stats)

	// detail endpoints
	dg := g.Group("/:id", studentMiddleware(api.students))
	dg.GET("", api.retrieve)
	dg.GET("/summary", api.summary)
	dg.PUT("/stage", api.changeStage)

	dg.GET("/interactions", api.queryInteractions)
	dg.POST("/interactions", api.logInteraction)

	dg.GET("/notes", api.queryNotes)
	dg.POST("/notes", api.createNote)
	dg.PUT("/notes/:noteID", api.updateNote)
	dg.DELETE("/notes/:noteID", api.destroyNote)

	dg.GET("/reminders", api.queryReminders)
	dg.POST("/reminders", api.createReminder)
	dg.PUT("/reminders/:reminderID", api.updateReminder)
	dg.DELETE("/reminders/:reminderID", api.destroyReminder)
	dg.POST("/reminders/:reminderID/toggle", api.toggleReminder)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	q, err := bindStudentQuery(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.students.Query(ctx.Request().Context(), q, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	s, err := api.students.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) stats(ctx echo.Context) error {
	stats, err := api.students.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	prof, err := api.profiles.Build(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "building profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *studentApi) summary(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	sum, err := api.profiles.Summary(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing student")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *studentApi) changeStage(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data student.ChangeStage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeStage")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err = api.students.ChangeStage(ctx.Request().Context(), s.ID, data.Stage, p.UID)
	if err != nil {
		return errors.Wrap(err, "changing stage")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) queryInteractions(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var ins []interaction.Interaction
	if ctx.QueryParam("view") == "communications" {
		ins, err = api.interactions.QueryCommunications(rctx, s.ID)
	} else {
		ins, err = api.interactions.Query(rctx, s.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying interactions")
	}
	if ins == nil {
		ins = []interaction.Interaction{}
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *studentApi) logInteraction(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data interaction.NewInteraction
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInteraction")
	}

	in, err := api.interactions.Log(ctx.Request().Context(), s.ID, p.UID, data)
	if err != nil {
		return errors.Wrap(err, "logging interaction")
	}
	return ctx.JSON(http.StatusCreated, in)
}
