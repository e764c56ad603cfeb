package note

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
)

var (
	nowFunc = core.UTCNow // mockable

	ErrNotFound = core.NotFound("note")
)

type Note struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
	UserID    string    `json:"userId"`
}

// Edited reports whether the note was changed after creation.
func (n Note) Edited() bool { return !n.UpdatedAt.Equal(n.CreatedAt) }

func (n Note) MarshalJSON() ([]byte, error) {
	type alias Note
	return json.Marshal(struct {
		alias
		Edited bool `json:"edited"`
	}{alias(n), n.Edited()})
}

// NoteInput is the body of note create and update requests.
type NoteInput struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (in *NoteInput) Validate(validate *validator.Validate) error {
	in.Content = core.CleanString(in.Content)
	return validate.Struct(in)
}

type (
	Repository interface {
		// SaveNote inserts or replaces the note with the same ID.
		SaveNote(ctx context.Context, n Note) (Note, error)
		GetNote(ctx context.Context, studentID, id string) (Note, error)
		// QueryNotes returns the student's notes, newest first.
		QueryNotes(ctx context.Context, studentID string) ([]Note, error)
		// DeleteNote succeeds when the note does not exist.
		DeleteNote(ctx context.Context, studentID, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, studentID, actor string, in NoteInput) (Note, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	now := nowFunc()
	n := Note{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    actor,
	}
	saved, err := svc.repo.SaveNote(ctx, n)
	return saved, errors.Wrap(err, "saving note")
}

func (svc *Service) List(ctx context.Context, studentID string) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, studentID)
}

// Update rewrites the content; a missing note yields ErrNotFound.
func (svc *Service) Update(ctx context.Context, studentID, id string, in NoteInput) (Note, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	n, err := svc.repo.GetNote(ctx, studentID, id)
	if err != nil {
		return Note{}, err
	}
	n.Content = in.Content
	n.UpdatedAt = nowFunc()
	saved, err := svc.repo.SaveNote(ctx, n)
	return saved, errors.Wrap(err, "saving note")
}

// Delete removes the note; deleting a missing note is not an error.
func (svc *Service) Delete(ctx context.Context, studentID, id string) error {
	return svc.repo.DeleteNote(ctx, studentID, id)
}
