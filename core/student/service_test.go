package student_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
	inmemdb "github.com/solomonake/student-crm-dashboard/storage/database/inmem"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	students     *student.Service
	interactions *interaction.Service
	repo         student.Repository
	validate     *validator.Validate
}

func setup(t *testing.T, allowRegression bool) env {
	t.Helper()
	t.Cleanup(student.SetNow(func() time.Time { return now }))

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	stage.InitValidators(validate, translator)
	interaction.InitValidators(validate, translator)

	db := inmemdb.Open()
	repo := inmemdb.NewStudentRepository(db)
	ilog := interaction.NewService(inmemdb.NewInteractionRepository(db), repo, validate)
	conf := core.PipelineConfig{StaleThresholdDays: 7, AllowStageRegression: allowRegression}
	return env{students: student.NewService(repo, ilog, validate, conf), interactions: ilog, repo: repo, validate: validate}
}

func (e env) create(t *testing.T, name, status string, lastActive time.Time) student.Student {
	t.Helper()
	s, err := e.students.Create(context.Background(), student.NewStudent{
		Name:              name,
		Email:             "x@example.com",
		Country:           "India",
		ApplicationStatus: status,
		LastActive:        lastActive,
	})
	require.NoError(t, err)
	return s
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	e := setup(t, true)

	tests := []struct {
		name      string
		in        student.NewStudent
		wantValid bool
	}{
		{name: "missing name", in: student.NewStudent{Email: "a@b.co", Country: "India"}},
		{name: "bad email", in: student.NewStudent{Name: "A", Email: "nope", Country: "India"}},
		{name: "missing country", in: student.NewStudent{Name: "A", Email: "a@b.co"}},
		{name: "bad stage", in: student.NewStudent{Name: "A", Email: "a@b.co", Country: "India", ApplicationStatus: "admitted"}},
		{name: "ok", in: student.NewStudent{Name: " Priya Sharma ", Email: "PRIYA@Email.com", Country: "India"}, wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := e.students.Create(ctx, tt.in)
			if !tt.wantValid {
				assert.True(t, core.IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, s.ID)
			assert.Equal(t, "Priya Sharma", s.Name)
			assert.Equal(t, "priya@email.com", s.Email)
			assert.Equal(t, stage.Exploring, s.ApplicationStatus, "defaults to exploring")
			assert.Equal(t, now, s.LastActive, "defaults to now")

			got, err := e.students.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		})
	}

	_, err := e.students.Get(ctx, "missing")
	assert.True(t, errors.Is(err, student.ErrNotFound))
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	e := setup(t, true)
	day := 24 * time.Hour

	e.create(t, "Priya Sharma", "applying", now.Add(-day))
	e.create(t, "David Chen", "shortlisting", now.Add(-8*day))
	e.create(t, "Fatima Al-Zahra", "exploring", now.Add(-7*day))
	e.create(t, "James Wilson", "submitted", now.Add(-20*day))

	names := func(students []student.Student) []string {
		out := make([]string, 0, len(students))
		for _, s := range students {
			out = append(out, s.Name)
		}
		return out
	}

	tests := []struct {
		name      string
		q         student.Query
		orderings []core.DBOrdering
		want      []string
	}{
		{name: "all by name", q: student.Query{}, want: []string{"David Chen", "Fatima Al-Zahra", "James Wilson", "Priya Sharma"}},
		{name: "status all", q: student.Query{Status: "ALL"}, want: []string{"David Chen", "Fatima Al-Zahra", "James Wilson", "Priya Sharma"}},
		{name: "stale", q: student.Query{Stale: true}, want: []string{"David Chen", "James Wilson"}},
		{name: "stale days", q: student.Query{StaleDays: 10}, want: []string{"James Wilson"}},
		{name: "high intent", q: student.Query{HighIntent: true}, want: []string{"James Wilson", "Priya Sharma"}},
		{name: "stale and high intent", q: student.Query{Stale: true, HighIntent: true}, want: []string{"James Wilson"}},
		{name: "search and status", q: student.Query{Search: "a", Status: "shortlisting"}, want: []string{"David Chen"}},
		{
			name:      "last active desc",
			q:         student.Query{},
			orderings: student.ParseOrderings("-last_active"),
			want:      []string{"Priya Sharma", "Fatima Al-Zahra", "David Chen", "James Wilson"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.students.Query(ctx, tt.q, tt.orderings...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err := e.students.Query(ctx, student.Query{Status: "admitted"})
	assert.True(t, core.IsValidationError(err))
	assert.True(t, errors.Is(err, stage.ErrInvalidStage))

	stats, err := e.students.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 7, stats.StaleDays)
	assert.Equal(t, 2, stats.NotContacted)
	assert.Equal(t, 2, stats.HighIntent)
}

func TestService_ChangeStage(t *testing.T) {
	ctx := context.Background()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	t.Run("forward", func(t *testing.T) {
		e := setup(t, true)
		s := e.create(t, "Priya Sharma", "shortlisting", weekAgo)

		got, err := e.students.ChangeStage(ctx, s.ID, " Applying ", "u1")
		require.NoError(t, err)
		assert.Equal(t, stage.Applying, got.ApplicationStatus)
		assert.Equal(t, now, got.LastActive)
		assert.Equal(t, now, got.UpdatedAt)

		ins, err := e.interactions.Query(ctx, s.ID)
		require.NoError(t, err)
		require.Len(t, ins, 1)
		assert.Equal(t, interaction.KindStageChange, ins[0].Type)
		assert.Equal(t, "Moved from Shortlisting to Applying stage", ins[0].Content)
		assert.Equal(t, "u1", ins[0].UserID)
		assert.Equal(t, interaction.StageChange{From: stage.Shortlisting, To: stage.Applying}, ins[0].Metadata)
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		e := setup(t, true)
		s := e.create(t, "Priya Sharma", "applying", weekAgo)

		got, err := e.students.ChangeStage(ctx, s.ID, "applying", "u1")
		require.NoError(t, err)
		assert.Equal(t, weekAgo, got.LastActive)

		ins, _ := e.interactions.Query(ctx, s.ID)
		assert.Empty(t, ins)
	})

	t.Run("backward allowed", func(t *testing.T) {
		e := setup(t, true)
		s := e.create(t, "James Wilson", "submitted", weekAgo)

		got, err := e.students.ChangeStage(ctx, s.ID, "exploring", "")
		require.NoError(t, err)
		assert.Equal(t, stage.Exploring, got.ApplicationStatus)

		ins, _ := e.interactions.Query(ctx, s.ID)
		require.Len(t, ins, 1)
		assert.Equal(t, interaction.SystemActor, ins[0].UserID)
	})

	t.Run("backward rejected", func(t *testing.T) {
		e := setup(t, false)
		s := e.create(t, "James Wilson", "submitted", weekAgo)

		_, err := e.students.ChangeStage(ctx, s.ID, "applying", "u1")
		assert.True(t, errors.Is(err, student.ErrStageRegression))
		assert.True(t, core.IsValidationError(err))

		got, _ := e.students.Get(ctx, s.ID)
		assert.Equal(t, stage.Submitted, got.ApplicationStatus)
	})

	t.Run("invalid stage", func(t *testing.T) {
		e := setup(t, true)
		s := e.create(t, "Priya Sharma", "applying", weekAgo)

		_, err := e.students.ChangeStage(ctx, s.ID, "admitted", "u1")
		assert.True(t, errors.Is(err, stage.ErrInvalidStage))
	})

	t.Run("missing student", func(t *testing.T) {
		e := setup(t, true)
		_, err := e.students.ChangeStage(ctx, "missing", "applying", "u1")
		assert.True(t, errors.Is(err, student.ErrNotFound))
	})

	t.Run("failed log keeps the old stage", func(t *testing.T) {
		e := setup(t, true)
		s := e.create(t, "Fatima Al-Zahra", "shortlisting", weekAgo)

		svc := student.NewService(e.repo, brokenStageLog{}, e.validate, core.PipelineConfig{StaleThresholdDays: 7, AllowStageRegression: true})
		_, err := svc.ChangeStage(ctx, s.ID, "applying", "u1")
		assert.True(t, errors.Is(err, errLogUnavailable), "error = %v", err)

		got, err := e.students.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, stage.Shortlisting, got.ApplicationStatus)
		assert.Equal(t, weekAgo, got.LastActive)
		assert.Equal(t, s.UpdatedAt, got.UpdatedAt)
	})
}

var errLogUnavailable = errors.New("interaction log unavailable")

type brokenStageLog struct{}

func (brokenStageLog) LogStageChange(context.Context, string, string, stage.Stage, stage.Stage, time.Time) (interaction.Interaction, error) {
	return interaction.Interaction{}, errLogUnavailable
}

func TestInteractionsTouchLastActive(t *testing.T) {
	ctx := context.Background()
	e := setup(t, true)
	s := e.create(t, "David Chen", "shortlisting", now.Add(-8*24*time.Hour))

	older := now.Add(-10 * 24 * time.Hour)
	_, err := e.interactions.Log(ctx, s.ID, "u1", interaction.NewInteraction{Type: "email", Content: "Sent brochure", Timestamp: older})
	require.NoError(t, err)
	got, _ := e.students.Get(ctx, s.ID)
	assert.Equal(t, now.Add(-8*24*time.Hour), got.LastActive, "older events never move lastActive back")

	newer := now.Add(-time.Hour)
	_, err = e.interactions.Log(ctx, s.ID, "u1", interaction.NewInteraction{Type: "login", Content: "Logged in", Timestamp: newer})
	require.NoError(t, err)
	got, _ = e.students.Get(ctx, s.ID)
	assert.Equal(t, newer, got.LastActive)

	_, err = e.interactions.Log(ctx, "missing", "u1", interaction.NewInteraction{Type: "login", Content: "Logged in"})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
