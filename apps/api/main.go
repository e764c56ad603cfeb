package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/apps/api/echo"
	"github.com/solomonake/student-crm-dashboard/apps/shared"
	"github.com/solomonake/student-crm-dashboard/core"
	logsvc "github.com/solomonake/student-crm-dashboard/services/logger"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		std.Printf("error: %+v", err)
		os.Exit(1)
	}
}

func run(std *log.Logger) error {
	conf, err := core.NewConfig()
	if err != nil {
		return err
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	ctx := context.Background()
	container, err := shared.New(ctx, conf, logger)
	if err != nil {
		return errors.Wrap(err, "setting up stores")
	}
	defer func() { _ = container.Close() }()

	provider, err := container.Identity()
	if err != nil {
		return err
	}
	sessions, err := container.Sessions(ctx)
	if err != nil {
		return errors.Wrap(err, "setting up sessions")
	}

	// make a channel to listen for an interrupt or terminate signal from the OS.
	// use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	svcs := container.Services()
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:       conf,
			Logger:     logger,
			Validate:   container.Validate,
			Translator: container.Translator,
			SignalShutdown: func() {
				select {
				case shutdown <- syscall.SIGTERM:
				default: // already shutting down
				}
			},
		},
		&echoapi.Deps{
			Identity:     provider,
			Sessions:     sessions,
			Students:     svcs.Students,
			Interactions: svcs.Interactions,
			Notes:        svcs.Notes,
			Reminders:    svcs.Reminders,
			Profiles:     svcs.Profiles,
		},
	)

	// start the server in a goroutine so that it doesn't block
	serverErrors := make(chan error, 1)
	go func() {
		std.Printf("main: API listening on %s (engine=%s, identity=%s)", conf.Server.Address, conf.Database.Engine, conf.Identity.Provider)
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		std.Printf("main: %v: start shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		std.Printf("main: %v: shutdown complete", sig)
	}
	return nil
}
