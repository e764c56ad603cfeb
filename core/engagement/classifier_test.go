package engagement

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
)

func in(kind interaction.Kind, content string, md ...interaction.Metadata) interaction.Interaction {
	i := interaction.Interaction{Type: kind, Content: content}
	if len(md) > 0 {
		i.Metadata = md[0]
	}
	return i
}

func logins(n int) []interaction.Interaction {
	out := make([]interaction.Interaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, in(interaction.KindLogin, "Student logged in"))
	}
	return out
}

func TestKeywordClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		ins  []interaction.Interaction
		want Signals
	}{
		{name: "empty", ins: nil, want: Signals{}},
		{
			name: "essay interest by keyword count",
			ins: []interaction.Interaction{
				in(interaction.KindAIQuestion, "How do I start my ESSAY?"),
				in(interaction.KindAIQuestion, "Review my personal statement"),
				in(interaction.KindEmail, "Sent writing tips"),
			},
			want: Signals{Counts: Counts{AIQuestion: 2, Email: 1}, EssayInterest: true},
		},
		{
			name: "two essay mentions are not enough",
			ins: []interaction.Interaction{
				in(interaction.KindAIQuestion, "essay length?"),
				in(interaction.KindAIQuestion, "essay topics?"),
			},
			want: Signals{Counts: Counts{AIQuestion: 2}},
		},
		{
			name: "essay upload by metadata",
			ins:  []interaction.Interaction{in(interaction.KindDocumentUpload, "Uploaded a draft", interaction.DocumentUpload{DocumentType: "Essay"})},
			want: Signals{Counts: Counts{DocumentUpload: 1}, EssayInterest: true},
		},
		{
			name: "essay word in a non-upload is not an upload",
			ins:  []interaction.Interaction{in(interaction.KindCall, "talked about the essay")},
			want: Signals{Counts: Counts{Call: 1}},
		},
		{
			name: "test prep",
			ins: []interaction.Interaction{
				in(interaction.KindAIQuestion, "What SAT score do I need?"),
				in(interaction.KindMeeting, "went over test dates"),
			},
			want: Signals{Counts: Counts{AIQuestion: 1, Meeting: 1}, TestPrepInterest: true},
		},
		{
			name: "transcript in content",
			ins:  []interaction.Interaction{in(interaction.KindDocumentUpload, "Uploaded Transcript.pdf")},
			want: Signals{Counts: Counts{DocumentUpload: 1}, TranscriptReceived: true},
		},
		{
			name: "transcript mention outside upload",
			ins:  []interaction.Interaction{in(interaction.KindEmail, "please send your transcript")},
			want: Signals{Counts: Counts{Email: 1}},
		},
		{name: "four logins", ins: logins(4), want: Signals{Counts: Counts{Login: 4}}},
		{name: "five logins", ins: logins(5), want: Signals{Counts: Counts{Login: 5}, HighActivity: true}},
	}
	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.ins))
		})
	}
}

func TestKeywordClassifier_OrderIndependent(t *testing.T) {
	ins := append(logins(5),
		in(interaction.KindAIQuestion, "essay"),
		in(interaction.KindAIQuestion, "sat"),
		in(interaction.KindDocumentUpload, "essay draft", interaction.DocumentUpload{DocumentType: "essay"}),
		in(interaction.KindDocumentUpload, "transcript"),
		in(interaction.KindStageChange, "Moved from Exploring to Shortlisting stage"),
		in(interaction.KindCall, "test scores"),
	)
	c := NewKeywordClassifier()
	want := c.Classify(ins)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]interaction.Interaction, len(ins))
		copy(shuffled, ins)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, c.Classify(shuffled))
	}
	assert.Equal(t, 11, want.Counts.Total())
}

func TestKeywordClassifier_CustomThresholds(t *testing.T) {
	c := NewKeywordClassifier()
	c.LoginThreshold = 2
	c.TestPrepKeywords = []string{"ACT"}

	got := c.Classify([]interaction.Interaction{
		in(interaction.KindLogin, ""),
		in(interaction.KindLogin, ""),
		in(interaction.KindAIQuestion, "act prep"),
		in(interaction.KindAIQuestion, "ACT dates"),
	})
	assert.True(t, got.HighActivity)
	assert.True(t, got.TestPrepInterest)
}
