package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seed() error {
	rep, err := cli.container.Seed(context.Background())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "seeded %d students (%d skipped), %d interactions, %d notes, %d reminders\n",
		rep.Students, rep.Skipped, rep.Interactions, rep.Notes, rep.Reminders)
	return nil
}
