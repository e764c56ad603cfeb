// Package identitysvc implements identity.Provider.
package identitysvc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
)

// Providers
const (
	ProviderLocal = "local"
	ProviderDemo  = "demo"
)

var nowFunc = core.UTCNow // mockable

// LocalProvider authenticates counselors against bcrypt hashed accounts in an AccountRepository.
type LocalProvider struct {
	repo identity.AccountRepository
}

var _ identity.Provider = (*LocalProvider)(nil)

func NewLocalProvider(repo identity.AccountRepository) *LocalProvider {
	return &LocalProvider{repo: repo}
}

func (p *LocalProvider) Login(ctx context.Context, cred identity.Credentials) (identity.Principal, error) {
	acc, err := p.repo.GetAccountByEmail(ctx, core.CleanString(cred.Email, true /* lower */))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return identity.Principal{}, identity.ErrInvalidCredentials
		}
		return identity.Principal{}, pkgerrors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(cred.Password); err != nil {
		return identity.Principal{}, identity.ErrInvalidCredentials
	}
	if !acc.IsActive {
		return identity.Principal{}, identity.ErrAccountDisabled
	}
	acc.LastLogin = nowFunc()
	if acc, err = p.repo.UpdateAccount(ctx, acc); err != nil {
		return identity.Principal{}, pkgerrors.Wrap(err, "setting lastLogin")
	}
	return acc.Principal(), nil
}

// Signup creates an active account. su is expected to be validated.
func (p *LocalProvider) Signup(ctx context.Context, su identity.Signup) (identity.Principal, error) {
	if err := identity.CheckPassword(su.Password, su.Name, su.Email); err != nil {
		return identity.Principal{}, err
	}
	now := nowFunc()
	acc := identity.Account{
		ID:        uuid.NewString(),
		Name:      su.Name,
		Email:     core.CleanString(su.Email, true /* lower */),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(su.Password); err != nil {
		return identity.Principal{}, pkgerrors.Wrap(err, "hashing password")
	}
	acc, err := p.repo.CreateAccount(ctx, acc)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return identity.Principal{}, identity.ErrEmailExists
		}
		return identity.Principal{}, pkgerrors.Wrap(err, "creating account")
	}
	return acc.Principal(), nil
}

// Logout has nothing to clean up locally; issued tokens are revoked by the session store.
func (p *LocalProvider) Logout(context.Context, identity.Principal) error {
	return nil
}

func (p *LocalProvider) Lookup(ctx context.Context, uid string) (identity.Principal, error) {
	acc, err := p.repo.GetAccountByID(ctx, uid)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return identity.Principal{}, identity.ErrInvalidCredentials
		}
		return identity.Principal{}, pkgerrors.Wrap(err, "finding account by id")
	}
	if !acc.IsActive {
		return identity.Principal{}, identity.ErrInvalidCredentials
	}
	return acc.Principal(), nil
}

// ResetPassword sets a new password on the account with the given email.
func (p *LocalProvider) ResetPassword(ctx context.Context, email, pwd string) error {
	acc, err := p.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = identity.CheckPassword(pwd, acc.Name, acc.Email); err != nil {
		return err
	}
	if err = acc.SetPassword(pwd); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = nowFunc()
	_, err = p.repo.UpdateAccount(ctx, acc)
	return pkgerrors.Wrap(err, "updating account")
}

// SetActive enables or disables the account with the given email.
func (p *LocalProvider) SetActive(ctx context.Context, email string, active bool) error {
	acc, err := p.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	acc.IsActive = active
	acc.UpdatedAt = nowFunc()
	_, err = p.repo.UpdateAccount(ctx, acc)
	return pkgerrors.Wrap(err, "updating account")
}
