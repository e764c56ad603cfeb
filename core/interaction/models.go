package interaction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
)

// Kind is the `type` of an Interaction.
type Kind string

const (
	KindLogin          Kind = "login"
	KindAIQuestion     Kind = "ai_question"
	KindDocumentUpload Kind = "document_upload"
	KindStageChange    Kind = "stage_change"
	KindEmail          Kind = "email"
	KindCall           Kind = "call"
	KindMeeting        Kind = "meeting"
)

// SystemActor is the UserID of interactions not performed by a person.
const SystemActor = "system"

var (
	Kinds = []Kind{KindLogin, KindAIQuestion, KindDocumentUpload, KindStageChange, KindEmail, KindCall, KindMeeting}

	// CommunicationKinds are the kinds a counselor logs by hand.
	CommunicationKinds = []Kind{KindEmail, KindCall, KindMeeting}

	ErrUnknownKind       = errors.New("unknown interaction type")
	ErrMetadataMismatch  = errors.New("metadata does not match interaction type")
	ErrStageChangeDirect = errors.New("stage changes are recorded by changing the student's stage")
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

func (k Kind) IsCommunication() bool {
	for _, c := range CommunicationKinds {
		if c == k {
			return true
		}
	}
	return false
}

// Metadata holds the extra fields a given Kind may carry.
// Only AIQuestion, DocumentUpload and StageChange exist; other kinds carry nil.
type Metadata interface {
	Kind() Kind
}

type AIQuestion struct {
	QuestionTopic string `json:"questionTopic,omitempty" bson:"questionTopic,omitempty"`
}

type DocumentUpload struct {
	DocumentType string `json:"documentType,omitempty" bson:"documentType,omitempty"`
}

type StageChange struct {
	From stage.Stage `json:"stageFrom" bson:"stageFrom"`
	To   stage.Stage `json:"stageTo" bson:"stageTo"`
}

func (AIQuestion) Kind() Kind     { return KindAIQuestion }
func (DocumentUpload) Kind() Kind { return KindDocumentUpload }
func (StageChange) Kind() Kind    { return KindStageChange }

// Interaction is an immutable entry of a student's timeline.
type Interaction struct {
	ID        string
	StudentID string
	Type      Kind
	Content   string
	Timestamp time.Time // UTC
	UserID    string
	Metadata  Metadata
}

// DocumentType returns the uploaded document type, if any.
func (i Interaction) DocumentType() string {
	if md, ok := i.Metadata.(DocumentUpload); ok {
		return md.DocumentType
	}
	return ""
}

func (i Interaction) QuestionTopic() string {
	if md, ok := i.Metadata.(AIQuestion); ok {
		return md.QuestionTopic
	}
	return ""
}

type interactionJSON struct {
	ID        string          `json:"id"`
	StudentID string          `json:"studentId"`
	Type      Kind            `json:"type"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func (i Interaction) MarshalJSON() ([]byte, error) {
	out := interactionJSON{
		ID:        i.ID,
		StudentID: i.StudentID,
		Type:      i.Type,
		Content:   i.Content,
		Timestamp: i.Timestamp,
		UserID:    i.UserID,
	}
	if i.Metadata != nil {
		md, err := json.Marshal(i.Metadata)
		if err != nil {
			return nil, err
		}
		out.Metadata = md
	}
	return json.Marshal(out)
}

func (i *Interaction) UnmarshalJSON(data []byte) error {
	var in interactionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	md, err := DecodeMetadata(in.Type, in.Metadata)
	if err != nil {
		return err
	}
	*i = Interaction{
		ID:        in.ID,
		StudentID: in.StudentID,
		Type:      in.Type,
		Content:   in.Content,
		Timestamp: in.Timestamp,
		UserID:    in.UserID,
		Metadata:  md,
	}
	return nil
}

// DecodeMetadata decodes raw JSON metadata into the variant for kind.
// Empty or null metadata decodes to nil.
func DecodeMetadata(kind Kind, raw []byte) (Metadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var md Metadata
	switch kind {
	case KindAIQuestion:
		var v AIQuestion
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrap(err, "decoding ai_question metadata")
		}
		md = v
	case KindDocumentUpload:
		var v DocumentUpload
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrap(err, "decoding document_upload metadata")
		}
		md = v
	case KindStageChange:
		var v StageChange
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrap(err, "decoding stage_change metadata")
		}
		md = v
	default:
		// kinds without metadata: ignore whatever was sent
		return nil, nil
	}
	return md, nil
}

// NewInteraction contains information needed to log an Interaction.
type NewInteraction struct {
	Type          string    `json:"type" validate:"required,kind"`
	Content       string    `json:"content" validate:"required,notblank"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"userId"`
	DocumentType  string    `json:"documentType"`
	QuestionTopic string    `json:"questionTopic"`
}

func (ni *NewInteraction) Validate(validate *validator.Validate) error {
	ni.Type = core.CleanString(ni.Type, true /* lower */)
	ni.Content = core.CleanString(ni.Content)
	ni.DocumentType = core.CleanString(ni.DocumentType)
	ni.QuestionTopic = core.CleanString(ni.QuestionTopic)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	if Kind(ni.Type) == KindStageChange {
		return core.NewValidationError(ErrStageChangeDirect, core.FieldError{Field: "type", Error: ErrStageChangeDirect.Error()})
	}
	if ni.DocumentType != "" && Kind(ni.Type) != KindDocumentUpload {
		return core.NewValidationError(ErrMetadataMismatch, core.FieldError{Field: "documentType", Error: ErrMetadataMismatch.Error()})
	}
	if ni.QuestionTopic != "" && Kind(ni.Type) != KindAIQuestion {
		return core.NewValidationError(ErrMetadataMismatch, core.FieldError{Field: "questionTopic", Error: ErrMetadataMismatch.Error()})
	}
	return nil
}

func (ni NewInteraction) metadata() Metadata {
	switch Kind(ni.Type) {
	case KindAIQuestion:
		if ni.QuestionTopic != "" {
			return AIQuestion{QuestionTopic: ni.QuestionTopic}
		}
	case KindDocumentUpload:
		if ni.DocumentType != "" {
			return DocumentUpload{DocumentType: ni.DocumentType}
		}
	}
	return nil
}

// StageChangeContent is the timeline text of a stage change.
func StageChangeContent(from, to stage.Stage) string {
	return fmt.Sprintf("Moved from %s to %s stage", from.Label(), to.Label())
}
