package main

import (
	"context"
	"fmt"

	"github.com/solomonake/student-crm-dashboard/core/identity"
)

// addUser creates an active counselor account.
func (cli *commandLine) addUser(name, email, pwd string) error {
	su := identity.Signup{Name: name, Email: email, Password: pwd, PasswordConfirm: pwd}
	if err := su.Validate(cli.container.Validate); err != nil {
		return err
	}
	p, err := cli.accounts.Signup(context.Background(), su)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "account %s created for %s\n", p.UID, p.Email)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.accounts.ResetPassword(context.Background(), email, pwd)
}

func (cli *commandLine) setActive(email string, active bool) error {
	return cli.accounts.SetActive(context.Background(), email, active)
}
