package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
)

type interactionRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Type      string    `db:"type"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
	UserID    string    `db:"user_id"`
	Metadata  null.JSON `db:"metadata"`
}

type interactionRepository struct {
	db *sqlx.DB
}

var _ interaction.Repository = (*interactionRepository)(nil) // interface compliance check

func NewInteractionRepository(db *sqlx.DB) interaction.Repository {
	return &interactionRepository{db: db}
}

func (repo interactionRepository) row(in interaction.Interaction) (interactionRow, error) {
	r := interactionRow{
		ID:        in.ID,
		StudentID: in.StudentID,
		Type:      string(in.Type),
		Content:   in.Content,
		Timestamp: in.Timestamp.UTC(),
		UserID:    in.UserID,
	}
	if in.Metadata != nil {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return interactionRow{}, errors.Wrap(err, "encoding metadata")
		}
		r.Metadata = null.JSONFrom(raw)
	}
	return r, nil
}

func (repo interactionRepository) unrow(r interactionRow) (interaction.Interaction, error) {
	in := interaction.Interaction{
		ID:        r.ID,
		StudentID: r.StudentID,
		Type:      interaction.Kind(r.Type),
		Content:   r.Content,
		Timestamp: r.Timestamp.UTC(),
		UserID:    r.UserID,
	}
	if r.Metadata.Valid {
		md, err := interaction.DecodeMetadata(in.Type, r.Metadata.JSON)
		if err != nil {
			return interaction.Interaction{}, err
		}
		in.Metadata = md
	}
	return in, nil
}

func (repo interactionRepository) AppendInteraction(ctx context.Context, in interaction.Interaction) (interaction.Interaction, error) {
	r, err := repo.row(in)
	if err != nil {
		return interaction.Interaction{}, err
	}
	q := `INSERT INTO interaction (id, student_id, type, content, timestamp, user_id, metadata)
		VALUES (:id, :student_id, :type, :content, :timestamp, :user_id, :metadata)`
	if _, err = repo.db.NamedExecContext(ctx, q, r); err != nil {
		return interaction.Interaction{}, errors.Wrap(err, "inserting interaction")
	}
	return in, nil
}

func (repo interactionRepository) QueryInteractions(ctx context.Context, studentID string) ([]interaction.Interaction, error) {
	var rows []interactionRow
	q := `SELECT id, student_id, type, content, timestamp, user_id, metadata
		FROM interaction WHERE student_id = $1 ORDER BY timestamp DESC, seq DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting interactions")
	}
	ins := make([]interaction.Interaction, 0, len(rows))
	for _, r := range rows {
		in, err := repo.unrow(r)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding interaction %s", r.ID)
		}
		ins = append(ins, in)
	}
	return ins, nil
}
