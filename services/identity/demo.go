package identitysvc

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
)

// demoNamespace derives stable demo UIDs from emails.
var demoNamespace = uuid.MustParse("6f1c3b8e-2d4a-4e5f-9a7b-0c1d2e3f4a5b")

// DemoProvider accepts any non-empty email. Principals are remembered for Lookup until restart.
type DemoProvider struct {
	mu    sync.RWMutex
	known map[string]identity.Principal
}

var _ identity.Provider = (*DemoProvider)(nil)

func NewDemoProvider() *DemoProvider {
	return &DemoProvider{known: make(map[string]identity.Principal)}
}

func (p *DemoProvider) principal(email, name string) identity.Principal {
	email = core.CleanString(email, true /* lower */)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	pr := identity.Principal{
		UID:   uuid.NewSHA1(demoNamespace, []byte(email)).String(),
		Email: email,
		Name:  name,
	}
	p.mu.Lock()
	p.known[pr.UID] = pr
	p.mu.Unlock()
	return pr
}

func (p *DemoProvider) Login(_ context.Context, cred identity.Credentials) (identity.Principal, error) {
	if core.CleanString(cred.Email) == "" {
		return identity.Principal{}, identity.ErrInvalidCredentials
	}
	return p.principal(cred.Email, ""), nil
}

func (p *DemoProvider) Signup(_ context.Context, su identity.Signup) (identity.Principal, error) {
	if core.CleanString(su.Email) == "" {
		return identity.Principal{}, identity.ErrInvalidCredentials
	}
	return p.principal(su.Email, su.Name), nil
}

func (p *DemoProvider) Logout(context.Context, identity.Principal) error {
	return nil
}

func (p *DemoProvider) Lookup(_ context.Context, uid string) (identity.Principal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if pr, ok := p.known[uid]; ok {
		return pr, nil
	}
	return identity.Principal{}, identity.ErrInvalidCredentials
}
