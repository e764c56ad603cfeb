package mongorepos

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

type studentDoc struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Email             string    `bson:"email"`
	Phone             string    `bson:"phone,omitempty"`
	Grade             string    `bson:"grade,omitempty"`
	Country           string    `bson:"country"`
	ApplicationStatus string    `bson:"applicationStatus"`
	LastActive        time.Time `bson:"lastActive"`
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func studentToDoc(s student.Student) studentDoc {
	return studentDoc{
		ID:                s.ID,
		Name:              s.Name,
		Email:             s.Email,
		Phone:             s.Phone,
		Grade:             s.Grade,
		Country:           s.Country,
		ApplicationStatus: string(s.ApplicationStatus),
		LastActive:        s.LastActive.UTC(),
		CreatedAt:         s.CreatedAt.UTC(),
		UpdatedAt:         s.UpdatedAt.UTC(),
	}
}

func (d studentDoc) student() student.Student {
	return student.Student{
		ID:                d.ID,
		Name:              d.Name,
		Email:             d.Email,
		Phone:             d.Phone,
		Grade:             d.Grade,
		Country:           d.Country,
		ApplicationStatus: stage.Stage(d.ApplicationStatus),
		LastActive:        d.LastActive.UTC(),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

// sortFields maps ordering fields to document keys. Status follows pipeline order, so it is sorted after decoding.
var sortFields = map[string]string{
	student.OrderName:       "name",
	student.OrderEmail:      "email",
	student.OrderCountry:    "country",
	student.OrderLastActive: "lastActive",
	student.OrderCreatedAt:  "createdAt",
	student.OrderUpdatedAt:  "updatedAt",
}

type studentRepository struct {
	col *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *mongo.Database) student.Repository {
	return &studentRepository{col: db.Collection(colStudent)}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if _, err := repo.col.InsertOne(ctx, studentToDoc(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var d studentDoc
	if err := repo.col.FindOne(ctx, byID(id)).Decode(&d); err != nil {
		return student.Student{}, trapNoDocsErr(err, student.ErrNotFound, "finding student")
	}
	return d.student(), nil
}

func studentFilter(q student.Query) bson.M {
	filter := bson.M{}
	var and []bson.M

	if q.Search != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		and = append(and, bson.M{"$or": []bson.M{{"name": rx}, {"email": rx}, {"country": rx}}})
	}
	if q.Status != "" && q.Status != student.StatusAll {
		and = append(and, bson.M{"applicationStatus": q.Status})
	}
	if q.Stale {
		and = append(and, bson.M{"lastActive": bson.M{"$lt": q.StaleBefore()}})
	}
	if q.HighIntent {
		and = append(and, bson.M{"applicationStatus": bson.M{"$in": []string{string(stage.Applying), string(stage.Submitted)}}})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

func studentSort(orderings []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(orderings)+2)
	for _, ord := range orderings {
		key, ok := sortFields[ord.Field]
		if !ok {
			continue
		}
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	return append(sort, bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "_id", Value: 1})
}

func (repo studentRepository) FilterStudents(ctx context.Context, q student.Query, orderings ...core.DBOrdering) ([]student.Student, error) {
	opts := options.Find().
		SetSort(studentSort(orderings)).
		SetCollation(&options.Collation{Locale: "en", Strength: 2}) // case-insensitive sort
	cur, err := repo.col.Find(ctx, studentFilter(q), opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	var docs []studentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	students := make([]student.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.student())
	}
	for _, ord := range orderings {
		if ord.Field == student.OrderStatus {
			student.Sort(students, orderings...)
			break
		}
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	res, err := repo.col.ReplaceOne(ctx, byID(s.ID), studentToDoc(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "replacing student")
	}
	if res.MatchedCount == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo studentRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	res, err := repo.col.UpdateOne(ctx, byID(id), bson.M{"$max": bson.M{"lastActive": at.UTC()}})
	if err != nil {
		return errors.Wrap(err, "touching student lastActive")
	}
	if res.MatchedCount == 0 {
		return student.ErrNotFound
	}
	return nil
}
