package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solomonake/student-crm-dashboard/apps/shared"
	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
	emailsvc "github.com/solomonake/student-crm-dashboard/services/email"
	identitysvc "github.com/solomonake/student-crm-dashboard/services/identity"
	logsvc "github.com/solomonake/student-crm-dashboard/services/logger"
	"github.com/solomonake/student-crm-dashboard/testutil"
)

const counselorPwd = "Str0ng&Secret"

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := testutil.Config()
	conf.Email.DigestRecipient = "lead@example.com"

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	container, err := shared.New(context.Background(), conf, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	out := new(bytes.Buffer)
	return &commandLine{
		conf:      conf,
		out:       out,
		container: container,
		accounts:  identitysvc.NewLocalProvider(container.Stores.Accounts),
		mailer:    emailsvc.NewConsoleServiceMock(conf),
	}, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func (tt cliTest) run(t *testing.T, cli *commandLine) error {
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }
	return cli.run(append([]string{"admin"}, tt.args...))
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "digest: negative horizon", args: []string{"digest", "-horizon", "-1h"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.run(t, cli))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCmd string
	var gotArgs []string
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		gotCmd, gotArgs = command, args
		return nil
	}

	t.Run("no sql database", func(t *testing.T) {
		assert.Equal(t, errNoSQL, cli.run([]string{"admin", "migrate", "up"}))
	})

	cli.db = new(sql.DB)
	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantArgs []string
	}{
		{name: "up", args: []string{"migrate", "up"}, wantCmd: "up", wantArgs: []string{}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, wantCmd: "up-to", wantArgs: []string{"2"}},
		{name: "down", args: []string{"migrate", "down"}, wantCmd: "down", wantArgs: []string{}},
		{name: "status", args: []string{"migrate", "status"}, wantCmd: "status", wantArgs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cli.run(append([]string{"admin"}, tt.args...)))
			assert.Equal(t, tt.wantCmd, gotCmd)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func Test_commandLine_adduser(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"adduser", "-email", "ada@example.com"}, pwd: counselorPwd, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Ada", "-email", "ada@example.com"}, wantErr: errHelp},
		{name: "ok", args: []string{"adduser", "-name", "Ada", "-email", "Ada@Example.com"}, pwd: counselorPwd},
		{name: "email taken", args: []string{"adduser", "-name", "Ada", "-email", "ada@example.com"}, pwd: counselorPwd, wantErr: identity.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(t, cli)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("weak password", func(t *testing.T) {
		err := cliTest{args: []string{"adduser", "-name", "Bob", "-email", "bob@example.com"}, pwd: "12345678"}.run(t, cli)
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr), "error = %v, want a validation error", err)
	})

	assert.Contains(t, out.String(), "created for ada@example.com")
	p, err := cli.accounts.Login(context.Background(), identity.Credentials{Email: "ada@example.com", Password: counselorPwd})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	testutil.CreateAccount(t, cli.accounts, "Ada", "ada@example.com", counselorPwd)

	const newPwd = "An0ther&Secret"
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ada@example.com"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "lol@example.com"}, pwd: newPwd, wantErr: core.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "-email", "ada@example.com"}, pwd: "short", wantErr: identity.ErrWeakPassword},
		{name: "ok", args: []string{"resetpassword", "-email", "ADA@example.com"}, pwd: newPwd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(t, cli)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	ctx := context.Background()
	_, err := cli.accounts.Login(ctx, identity.Credentials{Email: "ada@example.com", Password: counselorPwd})
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
	_, err = cli.accounts.Login(ctx, identity.Credentials{Email: "ada@example.com", Password: newPwd})
	assert.NoError(t, err)
}

func Test_commandLine_setActive(t *testing.T) {
	cli, _ := setup(t)
	p := testutil.CreateAccount(t, cli.accounts, "Ada", "ada@example.com", counselorPwd)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "setactive", "-email", "ada@example.com", "-active=false"}))
	_, err := cli.accounts.Lookup(ctx, p.UID)
	assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))

	require.NoError(t, cli.run([]string{"admin", "setactive", "-email", "ada@example.com"}))
	_, err = cli.accounts.Lookup(ctx, p.UID)
	assert.NoError(t, err)
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Contains(t, out.String(), "seeded 8 students (0 skipped)")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Contains(t, out.String(), "seeded 0 students (8 skipped)")
}

func Test_commandLine_digest(t *testing.T) {
	cli, out := setup(t)

	t.Run("nothing open", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		require.NoError(t, cli.run([]string{"admin", "digest"}))
		assert.Contains(t, out.String(), "no open reminders")
		assert.Empty(t, emailsvc.SentMessages)
	})

	require.NoError(t, cli.run([]string{"admin", "seed"}))

	t.Run("bad recipient", func(t *testing.T) {
		assert.Error(t, cli.run([]string{"admin", "digest", "-to", "not an email"}))
	})

	t.Run("no recipient", func(t *testing.T) {
		recipient := cli.conf.Email.DigestRecipient
		cli.conf.Email.DigestRecipient = ""
		defer func() { cli.conf.Email.DigestRecipient = recipient }()
		assert.Equal(t, errNoMailTo, cli.run([]string{"admin", "digest"}))
	})

	t.Run("sent", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "digest", "-horizon", "48h"}))
		assert.Contains(t, out.String(), "digest sent to lead@example.com")

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "lead@example.com", msg.To[0].Address)
		assert.Contains(t, msg.TextContent, "Priya")
	})
}
