package stage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Stage
		wantErr bool
	}{
		{name: "exact", in: "applying", want: Applying},
		{name: "case and spaces", in: "  Shortlisting ", want: Shortlisting},
		{name: "empty", in: "", wantErr: true},
		{name: "unknown", in: "enrolled", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidStage))
				var sErr *InvalidStageError
				require.True(t, errors.As(err, &sErr))
				assert.Equal(t, tt.in, sErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex(t *testing.T) {
	for want, st := range All {
		got, err := st.Index()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Stage("archived").Index()
	assert.True(t, errors.Is(err, ErrInvalidStage))
}

func TestProgressFraction(t *testing.T) {
	prev := 0.0
	for _, st := range All {
		frac, err := ProgressFraction(st)
		require.NoError(t, err)
		assert.Greater(t, frac, prev, "progress must strictly increase at %s", st)
		prev = frac
	}

	frac, err := ProgressFraction(Submitted)
	require.NoError(t, err)
	assert.Equal(t, 1.0, frac)

	frac, err = ProgressFraction(Exploring)
	require.NoError(t, err)
	assert.Equal(t, 0.25, frac)

	_, err = ProgressFraction("lol")
	assert.True(t, errors.Is(err, ErrInvalidStage))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Stage
		want     Direction
	}{
		{Exploring, Shortlisting, Forward},
		{Exploring, Submitted, Forward},
		{Applying, Shortlisting, Backward},
		{Submitted, Submitted, Unchanged},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Transition(Exploring, "nope")
	assert.True(t, errors.Is(err, ErrInvalidStage))
	_, err = Transition("nope", Exploring)
	assert.True(t, errors.Is(err, ErrInvalidStage))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Exploring", Exploring.Label())
	assert.Equal(t, "Submitted", Submitted.Label())
	assert.Equal(t, "", Stage("").Label())
}

func TestStage_UnmarshalJSON(t *testing.T) {
	var v struct {
		Status Stage `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"APPLYING"}`), &v))
	assert.Equal(t, Applying, v.Status)

	err := json.Unmarshal([]byte(`{"status":"graduated"}`), &v)
	assert.True(t, errors.Is(err, ErrInvalidStage))
}

func TestProgress(t *testing.T) {
	view, err := Progress(Applying)
	require.NoError(t, err)
	assert.Equal(t, 75, view.Percent)
	require.Len(t, view.Steps, 4)

	states := make([]string, 0, 4)
	for _, s := range view.Steps {
		states = append(states, s.State)
	}
	assert.Equal(t, []string{StepCompleted, StepCompleted, StepCurrent, StepUpcoming}, states)
	assert.Equal(t, "Applying", view.Steps[2].Label)

	_, err = Progress("")
	assert.True(t, errors.Is(err, ErrInvalidStage))
}
