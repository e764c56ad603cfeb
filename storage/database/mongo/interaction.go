package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
)

type interactionDoc struct {
	ID        string      `bson:"_id"`
	StudentID string      `bson:"studentId"`
	Type      string      `bson:"type"`
	Content   string      `bson:"content"`
	Timestamp time.Time   `bson:"timestamp"`
	UserID    string      `bson:"userId"`
	Seq       int64       `bson:"seq"`
	Metadata  interface{} `bson:"metadata,omitempty"`
}

// interactionReadDoc keeps metadata raw until the kind is known.
type interactionReadDoc struct {
	ID        string    `bson:"_id"`
	StudentID string    `bson:"studentId"`
	Type      string    `bson:"type"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
	UserID    string    `bson:"userId"`
	Metadata  bson.Raw  `bson:"metadata,omitempty"`
}

func decodeMetadata(kind interaction.Kind, raw bson.Raw) (interaction.Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch kind {
	case interaction.KindAIQuestion:
		var v interaction.AIQuestion
		err := bson.Unmarshal(raw, &v)
		return v, err
	case interaction.KindDocumentUpload:
		var v interaction.DocumentUpload
		err := bson.Unmarshal(raw, &v)
		return v, err
	case interaction.KindStageChange:
		var v interaction.StageChange
		err := bson.Unmarshal(raw, &v)
		return v, err
	}
	return nil, nil
}

func (d interactionReadDoc) interaction() (interaction.Interaction, error) {
	kind := interaction.Kind(d.Type)
	md, err := decodeMetadata(kind, d.Metadata)
	if err != nil {
		return interaction.Interaction{}, errors.Wrapf(err, "decoding %s metadata", kind)
	}
	return interaction.Interaction{
		ID:        d.ID,
		StudentID: d.StudentID,
		Type:      kind,
		Content:   d.Content,
		Timestamp: d.Timestamp.UTC(),
		UserID:    d.UserID,
		Metadata:  md,
	}, nil
}

type interactionRepository struct {
	col *mongo.Collection
}

var _ interaction.Repository = (*interactionRepository)(nil) // interface compliance check

func NewInteractionRepository(db *mongo.Database) interaction.Repository {
	return &interactionRepository{col: db.Collection(colInteraction)}
}

func (repo interactionRepository) AppendInteraction(ctx context.Context, in interaction.Interaction) (interaction.Interaction, error) {
	doc := interactionDoc{
		ID:        in.ID,
		StudentID: in.StudentID,
		Type:      string(in.Type),
		Content:   in.Content,
		Timestamp: in.Timestamp.UTC(),
		UserID:    in.UserID,
		Seq:       time.Now().UnixNano(),
		Metadata:  in.Metadata,
	}
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		return interaction.Interaction{}, errors.Wrap(err, "inserting interaction")
	}
	return in, nil
}

func (repo interactionRepository) QueryInteractions(ctx context.Context, studentID string) ([]interaction.Interaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	cur, err := repo.col.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding interactions")
	}
	var docs []interactionReadDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding interactions")
	}
	ins := make([]interaction.Interaction, 0, len(docs))
	for _, d := range docs {
		in, err := d.interaction()
		if err != nil {
			return nil, err
		}
		ins = append(ins, in)
	}
	return ins, nil
}
