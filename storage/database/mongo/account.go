package mongorepos

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/solomonake/student-crm-dashboard/core/identity"
)

type accountDoc struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	IsActive     bool       `bson:"isActive"`
	PasswordHash []byte     `bson:"passwordHash"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty"`
}

func accountToDoc(a identity.Account) accountDoc {
	d := accountDoc{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		IsActive:     a.IsActive,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
	if !a.LastLogin.IsZero() {
		ll := a.LastLogin.UTC()
		d.LastLogin = &ll
	}
	return d
}

func (d accountDoc) account() identity.Account {
	a := identity.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		IsActive:     d.IsActive,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.LastLogin != nil {
		a.LastLogin = d.LastLogin.UTC()
	}
	return a
}

type accountRepository struct {
	col *mongo.Collection
}

var _ identity.AccountRepository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *mongo.Database) identity.AccountRepository {
	return &accountRepository{col: db.Collection(colAccount)}
}

func trapAccountErr(err error, msg string) error {
	if mongo.IsDuplicateKeyError(err) {
		return identity.ErrEmailExists
	}
	return trapNoDocsErr(err, identity.ErrAccountNotFound, msg)
}

func (repo accountRepository) CreateAccount(ctx context.Context, a identity.Account) (identity.Account, error) {
	if _, err := repo.col.InsertOne(ctx, accountToDoc(a)); err != nil {
		return identity.Account{}, trapAccountErr(err, "inserting account")
	}
	return a, nil
}

func (repo accountRepository) get(ctx context.Context, filter bson.M) (identity.Account, error) {
	var d accountDoc
	if err := repo.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return identity.Account{}, trapAccountErr(err, "finding account")
	}
	return d.account(), nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id string) (identity.Account, error) {
	return repo.get(ctx, byID(id))
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string) (identity.Account, error) {
	return repo.get(ctx, bson.M{"email": email})
}

func (repo accountRepository) UpdateAccount(ctx context.Context, a identity.Account) (identity.Account, error) {
	res, err := repo.col.ReplaceOne(ctx, byID(a.ID), accountToDoc(a))
	if err != nil {
		return identity.Account{}, trapAccountErr(err, "replacing account")
	}
	if res.MatchedCount == 0 {
		return identity.Account{}, identity.ErrAccountNotFound
	}
	return a, nil
}
