package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/profile"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/student"
	sessionsvc "github.com/solomonake/student-crm-dashboard/services/session"
)

type (
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		// SignalShutdown is called when a handler fails with a core shutdown error. Optional.
		SignalShutdown func()
	}

	Deps struct {
		Identity     identity.Provider
		Sessions     sessionsvc.Store
		Students     *student.Service
		Interactions *interaction.Service
		Notes        *note.Service
		Reminders    *reminder.Service
		Profiles     *profile.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts   *Options
		deps   *Deps
		app    *echo.Echo
		tokens *TokenIssuer
	}
)

var _ Server = (*server)(nil) // interface compliance check

func NewServer(opts *Options, deps *Deps) Server {
	s := &server{
		opts:   opts,
		deps:   deps,
		app:    echo.New(),
		tokens: NewTokenIssuer(opts.Conf),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := []echo.MiddlewareFunc{s.tokens.middleware(), sessionMiddleware(s.deps.Sessions, s.deps.Identity)}

	registerAuthAPI(v1, authed, s.tokens, s.deps.Identity, s.deps.Sessions, s.opts.Validate)
	registerStudentAPI(v1.Group("/students", authed...), s.deps, s.opts.Validate)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
