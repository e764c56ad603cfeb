package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/profile"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
	inmemdb "github.com/solomonake/student-crm-dashboard/storage/database/inmem"
	"github.com/solomonake/student-crm-dashboard/storage/database/seed"
)

func setup(t *testing.T) *profile.Service {
	t.Helper()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	stage.InitValidators(validate, translator)
	interaction.InitValidators(validate, translator)

	db := inmemdb.Open()
	students := inmemdb.NewStudentRepository(db)
	interactions := inmemdb.NewInteractionRepository(db)
	notes := inmemdb.NewNoteRepository(db)
	reminders := inmemdb.NewReminderRepository(db)
	_, err := seed.Load(context.Background(), seed.Stores{
		Students:     students,
		Interactions: interactions,
		Notes:        notes,
		Reminders:    reminders,
	})
	require.NoError(t, err)

	ilog := interaction.NewService(interactions, students, validate)
	return profile.NewService(
		student.NewService(students, ilog, validate, core.PipelineConfig{StaleThresholdDays: 7}),
		ilog,
		note.NewService(notes, validate),
		reminder.NewService(reminders, validate),
		nil,
	)
}

func TestService_Build(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Build(ctx, "lol")
		assert.True(t, errors.Is(err, core.ErrNotFound), "error = %v", err)
	})

	p, err := svc.Build(ctx, seed.ID("priya"))
	require.NoError(t, err)

	assert.Equal(t, "Priya Sharma", p.Student.Name)
	assert.Equal(t, stage.Shortlisting, p.Progress.Stage)
	assert.Len(t, p.Progress.Steps, len(stage.All))
	assert.Equal(t, stage.Shortlisting, p.Summary.Stage)
	assert.NotEmpty(t, p.Summary.Text)

	assert.Len(t, p.Interactions, 7)
	for i := 1; i < len(p.Interactions); i++ {
		assert.False(t, p.Interactions[i].Timestamp.After(p.Interactions[i-1].Timestamp), "timeline is newest first")
	}
	assert.Len(t, p.Notes, 3)

	require.Len(t, p.Reminders, 3)
	assert.True(t, p.Reminders[0].Overdue)
	assert.True(t, p.Reminders[1].Overdue)
	assert.True(t, p.Reminders[2].Completed)
	assert.False(t, p.Reminders[2].Overdue)
}

func TestService_Summary(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p, err := svc.Build(ctx, seed.ID("david"))
	require.NoError(t, err)
	sum, err := svc.Summary(ctx, seed.ID("david"))
	require.NoError(t, err)
	assert.Equal(t, p.Summary, sum)
	assert.Equal(t, stage.Exploring, sum.Stage)
}
