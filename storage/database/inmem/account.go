package inmemdb

import (
	"context"

	"github.com/solomonake/student-crm-dashboard/core/identity"
)

type accountRepository struct {
	db *accountTable
}

var _ identity.AccountRepository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) identity.AccountRepository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) CreateAccount(_ context.Context, a identity.Account) (identity.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, acc := range repo.db.table {
		if acc.Email == a.Email {
			return identity.Account{}, identity.ErrEmailExists
		}
	}
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id string) (identity.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return identity.Account{}, identity.ErrAccountNotFound
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string) (identity.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.db.table {
		if a.Email == email {
			return *a, nil
		}
	}
	return identity.Account{}, identity.ErrAccountNotFound
}

func (repo *accountRepository) UpdateAccount(_ context.Context, a identity.Account) (identity.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[a.ID]; !ok {
		return identity.Account{}, identity.ErrAccountNotFound
	}
	for _, acc := range repo.db.table {
		if acc.ID != a.ID && acc.Email == a.Email {
			return identity.Account{}, identity.ErrEmailExists
		}
	}
	repo.db.table[a.ID] = &a
	return a, nil
}
