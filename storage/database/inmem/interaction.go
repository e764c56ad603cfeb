package inmemdb

import (
	"context"
	"sort"

	"github.com/solomonake/student-crm-dashboard/core/interaction"
)

type interactionRepository struct {
	db *interactionTable
}

var _ interaction.Repository = (*interactionRepository)(nil) // interface compliance check

func NewInteractionRepository(db *DB) interaction.Repository {
	return &interactionRepository{db: db.interaction}
}

func (repo *interactionRepository) AppendInteraction(_ context.Context, in interaction.Interaction) (interaction.Interaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[in.StudentID] = append(repo.db.table[in.StudentID], in)
	return in, nil
}

func (repo *interactionRepository) QueryInteractions(_ context.Context, studentID string) ([]interaction.Interaction, error) {
	repo.db.RLock()
	log := repo.db.table[studentID]
	out := make([]interaction.Interaction, len(log))
	copy(out, log)
	repo.db.RUnlock()

	// newest first; same timestamp: latest appended first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
