package main

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
)

// digest emails the open reminders due within horizon. Nothing is sent when there are none.
func (cli *commandLine) digest(horizon time.Duration, to string) error {
	if to == "" {
		to = cli.conf.Email.DigestRecipient
	}
	if to == "" {
		return errNoMailTo
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return errors.Wrapf(err, "parsing recipient %q", to)
	}

	ctx := context.Background()
	d, err := cli.container.Services().Reminders.BuildDigest(ctx, horizon, cli.container.StudentNamer())
	if err != nil {
		return err
	}
	if d.IsEmpty() {
		_, _ = fmt.Fprintln(cli.out, "no open reminders")
		return nil
	}
	if err = cli.mailer.SendMessages(d.Message(*addr)); err != nil {
		return errors.Wrap(err, "sending digest")
	}
	_, _ = fmt.Fprintf(cli.out, "digest sent to %s: %d overdue, %d upcoming\n", addr.Address, len(d.Overdue), len(d.Upcoming))
	return nil
}
