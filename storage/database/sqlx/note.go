package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/note"
)

type noteRepository struct {
	db *sqlx.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *sqlx.DB) note.Repository {
	return &noteRepository{db: db}
}

type noteRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	UserID    string    `db:"user_id"`
}

func (r noteRow) note() note.Note {
	return note.Note{
		ID:        r.ID,
		StudentID: r.StudentID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		UserID:    r.UserID,
	}
}

func (repo noteRepository) SaveNote(ctx context.Context, n note.Note) (note.Note, error) {
	q := `INSERT INTO note (id, student_id, content, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.ExecContext(ctx, q, n.ID, n.StudentID, n.Content, n.CreatedAt.UTC(), n.UpdatedAt.UTC(), n.UserID); err != nil {
		return note.Note{}, errors.Wrap(err, "upserting note")
	}
	return n, nil
}

func (repo noteRepository) GetNote(ctx context.Context, studentID, id string) (note.Note, error) {
	var r noteRow
	q := `SELECT id, student_id, content, created_at, updated_at, user_id FROM note WHERE id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &r, q, id, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, errors.Wrap(err, "selecting note")
	}
	return r.note(), nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, studentID string) ([]note.Note, error) {
	var rows []noteRow
	q := `SELECT id, student_id, content, created_at, updated_at, user_id
		FROM note WHERE student_id = $1 ORDER BY created_at DESC, id ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.note())
	}
	return notes, nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, studentID, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM note WHERE id = $1 AND student_id = $2`, id, studentID)
	return errors.Wrap(err, "deleting note")
}
