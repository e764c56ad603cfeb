// Package identity is the contract between the CRM and whoever authenticates counselors.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/solomonake/student-crm-dashboard/core"
)

// Provider failures
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrNetwork            = errors.New("identity provider unreachable")
	ErrAccountDisabled    = errors.New("account disabled")

	ErrAccountNotFound = core.NotFound("account")
)

// Principal is an authenticated counselor.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Provider interface {
	Login(ctx context.Context, cred Credentials) (Principal, error)
	Signup(ctx context.Context, su Signup) (Principal, error)
	Logout(ctx context.Context, p Principal) error
	// Lookup returns the principal for uid, failing with ErrInvalidCredentials once it is gone or disabled.
	Lookup(ctx context.Context, uid string) (Principal, error)
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

type Signup struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (su *Signup) Validate(validate *validator.Validate) error {
	su.Name = core.CleanString(su.Name)
	su.Email = core.CleanString(su.Email, true /* lower */)
	if err := validate.Struct(su); err != nil {
		return err
	}
	if err := CheckPassword(su.Password, su.Name, su.Email); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "password", Error: err.Error()})
	}
	return nil
}

// Account is a locally stored counselor login.
type Account struct {
	ID           string
	Name         string
	Email        string
	IsActive     bool
	PasswordHash []byte
	CreatedAt    time.Time // UTC
	UpdatedAt    time.Time // UTC
	LastLogin    time.Time // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a Account) Principal() Principal {
	return Principal{UID: a.ID, Email: a.Email, Name: a.Name}
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, a Account) (Account, error)
	GetAccountByID(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	// UpdateAccount overwrites the stored account.
	UpdateAccount(ctx context.Context, a Account) (Account, error)
}
