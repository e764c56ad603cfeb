package mongorepos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
)

func TestStudentFilter(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{}, studentFilter(student.Query{}))

	q := student.Query{Search: "a+b", Status: "applying", Stale: true, StaleDays: 7, Now: now}
	f := studentFilter(q)
	and, ok := f["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 3)

	or := and[0]["$or"].([]bson.M)
	assert.Equal(t, bson.M{"$regex": `a\+b`, "$options": "i"}, or[0]["name"])
	assert.Equal(t, bson.M{"applicationStatus": "applying"}, and[1])
	assert.Equal(t, bson.M{"lastActive": bson.M{"$lt": now.Add(-7 * 24 * time.Hour)}}, and[2])
}

func TestStudentSort(t *testing.T) {
	sort := studentSort([]core.DBOrdering{
		{Field: student.OrderLastActive},
		{Field: "bogus", Ascending: true},
		{Field: student.OrderName, Ascending: true},
	})
	assert.Equal(t, bson.D{
		{Key: "lastActive", Value: -1},
		{Key: "name", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	}, sort)
}

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name string
		kind interaction.Kind
		in   interface{}
		want interaction.Metadata
	}{
		{"ai question", interaction.KindAIQuestion, interaction.AIQuestion{QuestionTopic: "essays"}, interaction.AIQuestion{QuestionTopic: "essays"}},
		{"document", interaction.KindDocumentUpload, interaction.DocumentUpload{DocumentType: "transcript"}, interaction.DocumentUpload{DocumentType: "transcript"}},
		{"stage change", interaction.KindStageChange, interaction.StageChange{From: stage.Exploring, To: stage.Applying}, interaction.StageChange{From: stage.Exploring, To: stage.Applying}},
		{"login ignores metadata", interaction.KindLogin, bson.M{"x": 1}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(tc.in)
			require.NoError(t, err)
			md, err := decodeMetadata(tc.kind, raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, md)
		})
	}

	md, err := decodeMetadata(interaction.KindAIQuestion, nil)
	assert.NoError(t, err)
	assert.Nil(t, md)
}
