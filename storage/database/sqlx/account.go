package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/solomonake/student-crm-dashboard/core/identity"
)

const (
	accountColumns = "id, name, email, is_active, password_hash, created_at, updated_at, last_login"

	uniqueViolation = "23505"
)

type accountRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

type accountRepository struct {
	db *sqlx.DB
}

var _ identity.AccountRepository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) identity.AccountRepository {
	return &accountRepository{db: db}
}

func (repo accountRepository) row(a identity.Account) accountRow {
	return accountRow{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		IsActive:     a.IsActive,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(a.LastLogin.UTC(), !a.LastLogin.IsZero()),
	}
}

func (repo accountRepository) unrow(r accountRow) identity.Account {
	a := identity.Account{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		a.LastLogin = r.LastLogin.Time.UTC()
	}
	return a
}

// trapErr maps "no rows" to ErrAccountNotFound and unique email violations to ErrEmailExists.
func (repo accountRepository) trapErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return identity.ErrAccountNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return identity.ErrEmailExists
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) CreateAccount(ctx context.Context, a identity.Account) (identity.Account, error) {
	q := `INSERT INTO account (` + accountColumns + `)
		VALUES (:id, :name, :email, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(a)); err != nil {
		return identity.Account{}, repo.trapErr(err, "inserting account")
	}
	return a, nil
}

func (repo accountRepository) get(ctx context.Context, where string, arg interface{}) (identity.Account, error) {
	var r accountRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+accountColumns+` FROM account WHERE `+where+` = $1`, arg); err != nil {
		return identity.Account{}, repo.trapErr(err, "selecting account")
	}
	return repo.unrow(r), nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id string) (identity.Account, error) {
	return repo.get(ctx, "id", id)
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string) (identity.Account, error) {
	return repo.get(ctx, "email", email)
}

func (repo accountRepository) UpdateAccount(ctx context.Context, a identity.Account) (identity.Account, error) {
	q := `UPDATE account SET
		name = :name, email = :email, is_active = :is_active, password_hash = :password_hash,
		updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.row(a))
	if err != nil {
		return identity.Account{}, repo.trapErr(err, "updating account")
	}
	if err = checkAffected(res, identity.ErrAccountNotFound); err != nil {
		return identity.Account{}, err
	}
	return a, nil
}
