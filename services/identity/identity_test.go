package identitysvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solomonake/student-crm-dashboard/core/identity"
	inmemdb "github.com/solomonake/student-crm-dashboard/storage/database/inmem"
)

const (
	testEmail = "counselor@example.com"
	testPwd   = "Str0ng&Secret"
)

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewAccountRepository(inmemdb.Open())
	p := NewLocalProvider(repo)

	pr, err := p.Signup(ctx, identity.Signup{Name: "Ada Counselor", Email: testEmail, Password: testPwd, PasswordConfirm: testPwd})
	require.NoError(t, err)
	assert.NotEmpty(t, pr.UID)
	assert.Equal(t, testEmail, pr.Email)

	_, err = p.Signup(ctx, identity.Signup{Name: "Other", Email: testEmail, Password: testPwd, PasswordConfirm: testPwd})
	assert.True(t, errors.Is(err, identity.ErrEmailExists))

	_, err = p.Signup(ctx, identity.Signup{Name: "Weak", Email: "weak@example.com", Password: "password"})
	assert.True(t, errors.Is(err, identity.ErrWeakPassword))

	tests := []struct {
		name    string
		cred    identity.Credentials
		wantErr error
	}{
		{name: "unknown email", cred: identity.Credentials{Email: "nobody@example.com", Password: testPwd}, wantErr: identity.ErrInvalidCredentials},
		{name: "wrong password", cred: identity.Credentials{Email: testEmail, Password: "nope"}, wantErr: identity.ErrInvalidCredentials},
		{name: "ok", cred: identity.Credentials{Email: " Counselor@Example.com ", Password: testPwd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Login(ctx, tt.cred)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, pr, got)

			acc, err := repo.GetAccountByID(ctx, pr.UID)
			require.NoError(t, err)
			assert.False(t, acc.LastLogin.IsZero())
		})
	}

	got, err := p.Lookup(ctx, pr.UID)
	require.NoError(t, err)
	assert.Equal(t, pr, got)
	_, err = p.Lookup(ctx, "missing")
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))

	require.NoError(t, p.SetActive(ctx, testEmail, false))
	_, err = p.Login(ctx, identity.Credentials{Email: testEmail, Password: testPwd})
	assert.True(t, errors.Is(err, identity.ErrAccountDisabled))
	_, err = p.Lookup(ctx, pr.UID)
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
	require.NoError(t, p.SetActive(ctx, testEmail, true))

	newPwd := "An0ther&Secret"
	require.NoError(t, p.ResetPassword(ctx, testEmail, newPwd))
	_, err = p.Login(ctx, identity.Credentials{Email: testEmail, Password: testPwd})
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
	_, err = p.Login(ctx, identity.Credentials{Email: testEmail, Password: newPwd})
	assert.NoError(t, err)

	assert.NoError(t, p.Logout(ctx, pr))
}

func TestDemoProvider(t *testing.T) {
	ctx := context.Background()
	p := NewDemoProvider()

	_, err := p.Login(ctx, identity.Credentials{Email: "  "})
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))

	a, err := p.Login(ctx, identity.Credentials{Email: "Demo@Example.com", Password: "anything"})
	require.NoError(t, err)
	b, err := p.Login(ctx, identity.Credentials{Email: "demo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, a.UID, b.UID, "uid is derived from the email")
	assert.Equal(t, "demo", a.Name)

	got, err := p.Lookup(ctx, a.UID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = p.Lookup(ctx, "unknown")
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
}
