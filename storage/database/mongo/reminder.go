package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solomonake/student-crm-dashboard/core/reminder"
)

type reminderDoc struct {
	ID        string    `bson:"_id"`
	StudentID string    `bson:"studentId"`
	Title     string    `bson:"title"`
	Date      time.Time `bson:"date"`
	Completed bool      `bson:"completed"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
	UserID    string    `bson:"userId"`
}

func (d reminderDoc) reminder() reminder.Reminder {
	return reminder.Reminder{
		ID:        d.ID,
		StudentID: d.StudentID,
		Title:     d.Title,
		Date:      d.Date.UTC(),
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		UserID:    d.UserID,
	}
}

type reminderRepository struct {
	col *mongo.Collection
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *mongo.Database) reminder.Repository {
	return &reminderRepository{col: db.Collection(colReminder)}
}

func (repo reminderRepository) SaveReminder(ctx context.Context, r reminder.Reminder) (reminder.Reminder, error) {
	doc := reminderDoc{
		ID:        r.ID,
		StudentID: r.StudentID,
		Title:     r.Title,
		Date:      r.Date.UTC(),
		Completed: r.Completed,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		UserID:    r.UserID,
	}
	if _, err := repo.col.ReplaceOne(ctx, byID(r.ID), doc, options.Replace().SetUpsert(true)); err != nil {
		return reminder.Reminder{}, errors.Wrap(err, "upserting reminder")
	}
	return r, nil
}

func (repo reminderRepository) GetReminder(ctx context.Context, studentID, id string) (reminder.Reminder, error) {
	var d reminderDoc
	if err := repo.col.FindOne(ctx, byStudent(studentID, id)).Decode(&d); err != nil {
		return reminder.Reminder{}, trapNoDocsErr(err, reminder.ErrNotFound, "finding reminder")
	}
	return d.reminder(), nil
}

func (repo reminderRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]reminder.Reminder, error) {
	cur, err := repo.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(err, "finding reminders")
	}
	var docs []reminderDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding reminders")
	}
	reminders := make([]reminder.Reminder, 0, len(docs))
	for _, d := range docs {
		reminders = append(reminders, d.reminder())
	}
	return reminders, nil
}

func (repo reminderRepository) QueryReminders(ctx context.Context, studentID string) ([]reminder.Reminder, error) {
	return repo.find(ctx, bson.M{"studentId": studentID}, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
}

func (repo reminderRepository) QueryOpenReminders(ctx context.Context, before time.Time) ([]reminder.Reminder, error) {
	filter := bson.M{"completed": false, "date": bson.M{"$lt": before.UTC()}}
	return repo.find(ctx, filter, bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
}

func (repo reminderRepository) DeleteReminder(ctx context.Context, studentID, id string) error {
	_, err := repo.col.DeleteOne(ctx, byStudent(studentID, id))
	return errors.Wrap(err, "deleting reminder")
}
