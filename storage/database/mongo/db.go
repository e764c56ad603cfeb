// Package mongorepos stores every aggregate in MongoDB collections.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/solomonake/student-crm-dashboard/core"
)

// Collection names
const (
	colStudent     = "students"
	colInteraction = "interactions"
	colNote        = "notes"
	colReminder    = "reminders"
	colAccount     = "accounts"
)

// Connect opens a client for conf.Database.URI, pings it and returns the app database.
func Connect(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client.Database(conf.Database.Name), nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colStudent: {
			{Keys: bson.D{{Key: "applicationStatus", Value: 1}}},
			{Keys: bson.D{{Key: "lastActive", Value: 1}}},
		},
		colInteraction: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		colNote: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colReminder: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "completed", Value: 1}, {Key: "date", Value: 1}}},
		},
		colAccount: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", col)
		}
	}
	return nil
}

// trapNoDocsErr maps mongo.ErrNoDocuments to notFound.
func trapNoDocsErr(err error, notFound error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func byID(id string) bson.M { return bson.M{"_id": id} }

func byStudent(studentID, id string) bson.M { return bson.M{"_id": id, "studentId": studentID} }
