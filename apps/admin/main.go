package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/solomonake/student-crm-dashboard/apps/shared"
	"github.com/solomonake/student-crm-dashboard/core"
	identitysvc "github.com/solomonake/student-crm-dashboard/services/identity"
	logsvc "github.com/solomonake/student-crm-dashboard/services/logger"
	"github.com/solomonake/student-crm-dashboard/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	cli := commandLine{conf: conf, out: os.Stdout}

	// migrations run on a bare connection so `migrate down` is not preceded by an implicit `up`
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if conf.Database.Engine == core.EnginePostgres {
			errAndDie(database.CreateIfNotExist(conf))
			db, err := database.Open(conf)
			errAndDie(err)
			defer db.Close()
			cli.db = db.DB
		}
	} else {
		rollbar := logsvc.NewRollbarLogger(logger, conf)
		defer rollbar.Close()

		container, err := shared.New(context.Background(), conf, rollbar)
		errAndDie(err)
		defer container.Close()

		cli.container = container
		cli.accounts = identitysvc.NewLocalProvider(container.Stores.Accounts)
		cli.mailer, err = container.Mailer()
		errAndDie(err)
	}

	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
