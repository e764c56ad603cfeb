package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/solomonake/student-crm-dashboard/apps/shared"
	"github.com/solomonake/student-crm-dashboard/core"
	identitysvc "github.com/solomonake/student-crm-dashboard/services/identity"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errNoSQL    = errors.New("migrate requires the postgres database engine")
	errNoMailTo = errors.New("no digest recipient: pass -to or set email.digestRecipient")
)

type commandLine struct {
	conf      *core.Config
	out       io.Writer
	db        *sql.DB // only set for the postgres engine
	container *shared.Container
	accounts  *identitysvc.LocalProvider
	mailer    core.EmailService
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]            - run a goose command (up, down, status, ...) on the postgres database")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL   - create a counselor account, the password is prompted")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -email EMAIL        - reset a counselor's password")
	_, _ = fmt.Fprintln(cli.out, "  setactive -email EMAIL -active=B  - enable or disable a counselor account")
	_, _ = fmt.Fprintln(cli.out, "  seed                              - load the sample students")
	_, _ = fmt.Fprintln(cli.out, "  digest [-horizon 24h] [-to EMAIL] - email the open reminders due within horizon")
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(fs *flag.FlagSet, prompt string) (string, error) {
	_, _ = fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The counselor's display name.")
	addUserEmail := addUserCmd.String("email", "", "The counselor's login email. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The counselor's email. The password will be prompted next.")

	setActiveCmd := flag.NewFlagSet("setactive", flag.ContinueOnError)
	setActiveEmail := setActiveCmd.String("email", "", "The counselor's email.")
	setActiveValue := setActiveCmd.Bool("active", true, "Whether the account may log in.")

	digestCmd := flag.NewFlagSet("digest", flag.ContinueOnError)
	digestHorizon := digestCmd.Duration("horizon", 24*time.Hour, "Include reminders due within this duration.")
	digestTo := digestCmd.String("to", "", "Recipient email. Defaults to email.digestRecipient.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, setActiveCmd, digestCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd, "Enter password:")
		if err != nil {
			return err
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd, "Enter password:")
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "setactive":
		if err := setActiveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setActiveEmail == "" {
			setActiveCmd.Usage()
			return errHelp
		}
		return cli.setActive(*setActiveEmail, *setActiveValue)

	case "seed":
		return cli.seed()

	case "digest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *digestHorizon < 0 {
			digestCmd.Usage()
			return errHelp
		}
		return cli.digest(*digestHorizon, *digestTo)

	default:
		cli.printUsage()
		return errHelp
	}
}
