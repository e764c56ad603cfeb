package summary

import (
	"fmt"
	"strings"

	"github.com/solomonake/student-crm-dashboard/core/engagement"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

// Recommendations
const (
	RecEncourageAI       = "encourage more AI interactions"
	RecEssaySupport      = "follow up on essay support"
	RecTestPrep          = "provide test preparation resources"
	RecDocumentPrep      = "guide on document preparation"
	RecTranscriptRemind  = "remind about transcript requirements"
	minAIQuestionsInExpl = 2
)

type Summary struct {
	Stage           stage.Stage        `json:"stage"`
	Narrative       string             `json:"narrative"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
	Signals         engagement.Signals `json:"signals"`
	Text            string             `json:"text"` // String() at generation time
}

// String joins the narrative and the recommendations into one paragraph.
func (s Summary) String() string {
	if len(s.Recommendations) == 0 {
		return s.Narrative
	}
	return s.Narrative + " Recommended: " + strings.Join(s.Recommendations, ", ") + "."
}

// Generate composes the narrative and recommendations for a student in stage st.
// It is pure; the only failure is an unknown stage.
func Generate(st stage.Stage, sig engagement.Signals) (Summary, error) {
	if _, err := st.Index(); err != nil {
		return Summary{}, err
	}

	insights := make([]string, 0, 5)
	if n := sig.Counts.AIQuestion; n > 0 {
		insights = append(insights, fmt.Sprintf("frequently asks AI questions (%d total)", n))
	}
	if sig.EssayInterest {
		insights = append(insights, "shows strong interest in essay support")
	}
	if sig.TestPrepInterest {
		insights = append(insights, "is actively researching test requirements")
	}
	if n := sig.Counts.DocumentUpload; n > 0 {
		noun := "document"
		if n > 1 {
			noun = "documents"
		}
		insights = append(insights, fmt.Sprintf("has uploaded %d %s", n, noun))
	}
	if sig.HighActivity {
		insights = append(insights, "is highly engaged with the platform")
	}

	recs := make([]string, 0, 5)
	if st == stage.Exploring && sig.Counts.AIQuestion < minAIQuestionsInExpl {
		recs = append(recs, RecEncourageAI)
	}
	if sig.EssayInterest {
		recs = append(recs, RecEssaySupport)
	}
	if sig.TestPrepInterest {
		recs = append(recs, RecTestPrep)
	}
	if st == stage.Shortlisting && sig.Counts.DocumentUpload == 0 {
		recs = append(recs, RecDocumentPrep)
	}
	if st == stage.Applying && !sig.TranscriptReceived {
		recs = append(recs, RecTranscriptRemind)
	}

	sum := Summary{
		Stage:           st,
		Narrative:       narrative(st, insights),
		Insights:        insights,
		Recommendations: recs,
		Signals:         sig,
	}
	sum.Text = sum.String()
	return sum, nil
}

func narrative(st stage.Stage, insights []string) string {
	var b strings.Builder
	b.WriteString("This student is in the ")
	b.WriteString(st.Label())
	b.WriteString(" stage.")
	if len(insights) > 0 {
		b.WriteString(" The student ")
		b.WriteString(joinClauses(insights))
		b.WriteString(".")
	}
	return b.String()
}

// joinClauses joins "a", "b", "c" into "a, b and c".
func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	}
	return strings.Join(clauses[:len(clauses)-1], ", ") + " and " + clauses[len(clauses)-1]
}

// Generator runs a Classifier over an interaction log before Generate.
type Generator struct {
	Classifier engagement.Classifier
}

func NewGenerator(c engagement.Classifier) *Generator {
	if c == nil {
		c = engagement.NewKeywordClassifier()
	}
	return &Generator{Classifier: c}
}

func (g *Generator) Summarize(st stage.Stage, interactions []interaction.Interaction) (Summary, error) {
	return Generate(st, g.Classifier.Classify(interactions))
}
