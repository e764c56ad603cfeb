// Package testutil holds fixtures shared by the app tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
)

// Config returns an in-memory configuration with request logs and error reporting off.
func Config() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Student CRM",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
		Pipeline: core.PipelineConfig{StaleThresholdDays: 7, AllowStageRegression: true},
		Identity: core.IdentityConfig{Provider: "local"},
		Email:    core.EmailConfig{Provider: "console", DefaultFromEmail: "noreply@example.com"},
	}
}

type signer interface {
	Signup(ctx context.Context, su identity.Signup) (identity.Principal, error)
}

func CreateAccount(t *testing.T, provider signer, name, email, pwd string) identity.Principal {
	t.Helper()
	p, err := provider.Signup(context.Background(), identity.Signup{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return p
}
