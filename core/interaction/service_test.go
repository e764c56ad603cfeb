package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

type memRepo struct {
	mu   sync.Mutex
	rows []Interaction
}

func (r *memRepo) AppendInteraction(_ context.Context, in Interaction) (Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, in)
	return in, nil
}

func (r *memRepo) QueryInteractions(_ context.Context, studentID string) ([]Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Interaction, 0)
	for _, in := range r.rows {
		if in.StudentID == studentID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

type recorder struct {
	known   map[string]bool
	touched map[string]time.Time
}

func (r *recorder) TouchLastActive(_ context.Context, studentID string, at time.Time) error {
	if !r.known[studentID] {
		return core.NotFound("student")
	}
	if r.touched == nil {
		r.touched = make(map[string]time.Time)
	}
	r.touched[studentID] = at
	return nil
}

func setup(t *testing.T) (*Service, *memRepo, *recorder) {
	t.Helper()
	validate := core.NewValidator(core.NewTranslator())
	InitValidators(validate, core.NewTranslator())
	repo := new(memRepo)
	rec := &recorder{known: map[string]bool{"s1": true}}
	return NewService(repo, rec, validate), repo, rec
}

func TestService_Log(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = core.UTCNow }()

	tests := []struct {
		name      string
		studentID string
		in        NewInteraction
		wantValid bool
		wantNF    bool
		wantMeta  Metadata
	}{
		{name: "blank content", studentID: "s1", in: NewInteraction{Type: "email", Content: "   "}, wantValid: true},
		{name: "unknown type", studentID: "s1", in: NewInteraction{Type: "fax", Content: "sent"}, wantValid: true},
		{name: "stage change rejected", studentID: "s1", in: NewInteraction{Type: "stage_change", Content: "moved"}, wantValid: true},
		{name: "metadata mismatch", studentID: "s1", in: NewInteraction{Type: "call", Content: "hi", DocumentType: "essay"}, wantValid: true},
		{name: "unknown student", studentID: "nope", in: NewInteraction{Type: "call", Content: "hi"}, wantNF: true},
		{name: "call", studentID: "s1", in: NewInteraction{Type: "Call", Content: " Discussed timeline "}},
		{
			name: "document upload", studentID: "s1",
			in:       NewInteraction{Type: "document_upload", Content: "Uploaded transcript", DocumentType: "transcript"},
			wantMeta: DocumentUpload{DocumentType: "transcript"},
		},
		{
			name: "ai question", studentID: "s1",
			in:       NewInteraction{Type: "ai_question", Content: "How long should my essay be?", QuestionTopic: "essay"},
			wantMeta: AIQuestion{QuestionTopic: "essay"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, rec := setup(t)
			got, err := svc.Log(context.Background(), tt.studentID, "counselor-1", tt.in)
			switch {
			case tt.wantValid:
				require.Error(t, err)
				assert.True(t, core.IsValidationError(err), "got %T", err)
				assert.Empty(t, repo.rows)
			case tt.wantNF:
				assert.True(t, errors.Is(err, core.ErrNotFound))
				assert.Empty(t, repo.rows)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, now, got.Timestamp)
				assert.Equal(t, "counselor-1", got.UserID)
				assert.Equal(t, tt.wantMeta, got.Metadata)
				assert.Equal(t, now, rec.touched["s1"])
				require.Len(t, repo.rows, 1)
			}
		})
	}
}

func TestService_LogStageChange(t *testing.T) {
	svc, repo, _ := setup(t)
	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	got, err := svc.LogStageChange(context.Background(), "s1", "", stage.Exploring, stage.Shortlisting, at)
	require.NoError(t, err)
	assert.Equal(t, KindStageChange, got.Type)
	assert.Equal(t, SystemActor, got.UserID)
	assert.Equal(t, "Moved from Exploring to Shortlisting stage", got.Content)
	assert.Equal(t, StageChange{From: stage.Exploring, To: stage.Shortlisting}, got.Metadata)
	assert.Len(t, repo.rows, 1)
}

func TestService_QueryCommunications(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, k := range []string{"login", "email", "ai_question", "meeting"} {
		_, err := svc.Log(ctx, "s1", "u", NewInteraction{Type: k, Content: k, Timestamp: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	comms, err := svc.QueryCommunications(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, comms, 2)
	assert.Equal(t, KindMeeting, comms[0].Type)
	assert.Equal(t, KindEmail, comms[1].Type)
}

func TestInteraction_JSON(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	in := Interaction{
		ID: "i1", StudentID: "s1", Type: KindStageChange, Content: "Moved", Timestamp: ts, UserID: SystemActor,
		Metadata: StageChange{From: stage.Exploring, To: stage.Applying},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"i1","studentId":"s1","type":"stage_change","content":"Moved","timestamp":"2024-01-15T10:30:00Z",
		  "userId":"system","metadata":{"stageFrom":"exploring","stageTo":"applying"}}`,
		string(data))

	var back Interaction
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, in, back)

	// metadata on a kind that cannot carry it is dropped
	require.NoError(t, json.Unmarshal([]byte(`{"type":"login","content":"x","metadata":{"documentType":"essay"}}`), &back))
	assert.Nil(t, back.Metadata)

	// unknown stage inside stage_change metadata is rejected
	err = json.Unmarshal([]byte(`{"type":"stage_change","metadata":{"stageFrom":"lol","stageTo":"applying"}}`), &back)
	assert.True(t, errors.Is(err, stage.ErrInvalidStage))
}
