package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solomonake/student-crm-dashboard/core/note"
)

type noteDoc struct {
	ID        string    `bson:"_id"`
	StudentID string    `bson:"studentId"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
	UserID    string    `bson:"userId"`
}

func (d noteDoc) note() note.Note {
	return note.Note{
		ID:        d.ID,
		StudentID: d.StudentID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		UserID:    d.UserID,
	}
}

type noteRepository struct {
	col *mongo.Collection
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *mongo.Database) note.Repository {
	return &noteRepository{col: db.Collection(colNote)}
}

func (repo noteRepository) SaveNote(ctx context.Context, n note.Note) (note.Note, error) {
	doc := noteDoc{
		ID:        n.ID,
		StudentID: n.StudentID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UTC(),
		UpdatedAt: n.UpdatedAt.UTC(),
		UserID:    n.UserID,
	}
	if _, err := repo.col.ReplaceOne(ctx, byID(n.ID), doc, options.Replace().SetUpsert(true)); err != nil {
		return note.Note{}, errors.Wrap(err, "upserting note")
	}
	return n, nil
}

func (repo noteRepository) GetNote(ctx context.Context, studentID, id string) (note.Note, error) {
	var d noteDoc
	if err := repo.col.FindOne(ctx, byStudent(studentID, id)).Decode(&d); err != nil {
		return note.Note{}, trapNoDocsErr(err, note.ErrNotFound, "finding note")
	}
	return d.note(), nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, studentID string) ([]note.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := repo.col.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding notes")
	}
	var docs []noteDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding notes")
	}
	notes := make([]note.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.note())
	}
	return notes, nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, studentID, id string) error {
	_, err := repo.col.DeleteOne(ctx, byStudent(studentID, id))
	return errors.Wrap(err, "deleting note")
}
