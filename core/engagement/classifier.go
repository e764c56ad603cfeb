// Package engagement derives qualitative interest and activity signals from a student's interaction log.
package engagement

import (
	"strings"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
)

// Counts holds the number of interactions of each type.
type Counts struct {
	Login          int `json:"login"`
	AIQuestion     int `json:"ai_question"`
	DocumentUpload int `json:"document_upload"`
	StageChange    int `json:"stage_change"`
	Email          int `json:"email"`
	Call           int `json:"call"`
	Meeting        int `json:"meeting"`
}

func (c *Counts) add(k interaction.Kind) {
	switch k {
	case interaction.KindLogin:
		c.Login++
	case interaction.KindAIQuestion:
		c.AIQuestion++
	case interaction.KindDocumentUpload:
		c.DocumentUpload++
	case interaction.KindStageChange:
		c.StageChange++
	case interaction.KindEmail:
		c.Email++
	case interaction.KindCall:
		c.Call++
	case interaction.KindMeeting:
		c.Meeting++
	}
}

// Total of all counted interactions.
func (c Counts) Total() int {
	return c.Login + c.AIQuestion + c.DocumentUpload + c.StageChange + c.Email + c.Call + c.Meeting
}

// Signals is the output of a Classifier. It is comparable with ==.
type Signals struct {
	Counts             Counts `json:"counts"`
	EssayInterest      bool   `json:"essayInterest"`
	TestPrepInterest   bool   `json:"testPrepInterest"`
	TranscriptReceived bool   `json:"transcriptReceived"`
	HighActivity       bool   `json:"highActivity"`
}

// Classifier turns an interaction log into Signals.
// Implementations must not depend on the order of the interactions.
type Classifier interface {
	Classify(interactions []interaction.Interaction) Signals
}

var (
	DefaultEssayKeywords    = []string{"essay", "personal statement", "writing"}
	DefaultTestPrepKeywords = []string{"sat", "test", "score"}
)

const (
	DefaultEssayThreshold    = 3
	DefaultTestPrepThreshold = 2
	DefaultLoginThreshold    = 5
)

// KeywordClassifier matches keywords as case-insensitive substrings of the raw content.
// No tokenization: "test" also matches "contest" and "sat" matches "satisfied".
type KeywordClassifier struct {
	EssayKeywords     []string
	EssayThreshold    int
	TestPrepKeywords  []string
	TestPrepThreshold int
	LoginThreshold    int
}

var _ Classifier = (*KeywordClassifier)(nil)

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		EssayKeywords:     DefaultEssayKeywords,
		EssayThreshold:    DefaultEssayThreshold,
		TestPrepKeywords:  DefaultTestPrepKeywords,
		TestPrepThreshold: DefaultTestPrepThreshold,
		LoginThreshold:    DefaultLoginThreshold,
	}
}

func (c *KeywordClassifier) Classify(interactions []interaction.Interaction) Signals {
	var (
		sig           Signals
		essayHits     int
		testPrepHits  int
		essayUploaded bool
	)
	for _, in := range interactions {
		sig.Counts.add(in.Type)
		content := strings.ToLower(in.Content)

		if containsAny(content, c.EssayKeywords) {
			essayHits++
		}
		if containsAny(content, c.TestPrepKeywords) {
			testPrepHits++
		}
		if in.Type == interaction.KindDocumentUpload {
			docType := strings.ToLower(in.DocumentType())
			if strings.Contains(docType, "essay") || strings.Contains(content, "essay") {
				essayUploaded = true
			}
			if strings.Contains(docType, "transcript") || strings.Contains(content, "transcript") {
				sig.TranscriptReceived = true
			}
		}
	}

	sig.EssayInterest = essayHits >= c.EssayThreshold || essayUploaded
	sig.TestPrepInterest = testPrepHits >= c.TestPrepThreshold
	sig.HighActivity = sig.Counts.Login >= c.LoginThreshold
	return sig
}

// containsAny expects s to be lower-cased already.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
