// Package shared wires the stores and services both binaries need from a *core.Config.
package shared

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/profile"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
	emailsvc "github.com/solomonake/student-crm-dashboard/services/email"
	identitysvc "github.com/solomonake/student-crm-dashboard/services/identity"
	sessionsvc "github.com/solomonake/student-crm-dashboard/services/session"
	"github.com/solomonake/student-crm-dashboard/storage/database"
	inmemdb "github.com/solomonake/student-crm-dashboard/storage/database/inmem"
	mongorepos "github.com/solomonake/student-crm-dashboard/storage/database/mongo"
	"github.com/solomonake/student-crm-dashboard/storage/database/seed"
	sqlxrepos "github.com/solomonake/student-crm-dashboard/storage/database/sqlx"
)

// Email providers
const (
	EmailConsole  = "console"
	EmailSendgrid = "sendgrid"
)

type (
	Stores struct {
		Students     student.Repository
		Interactions interaction.Repository
		Notes        note.Repository
		Reminders    reminder.Repository
		Accounts     identity.AccountRepository
	}

	Services struct {
		Students     *student.Service
		Interactions *interaction.Service
		Notes        *note.Service
		Reminders    *reminder.Service
		Profiles     *profile.Service
	}

	Container struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Stores     Stores

		closers []func() error
	}
)

func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	stage.InitValidators(validate, translator)
	interaction.InitValidators(validate, translator)
	return validate, translator
}

// New opens the stores of the configured database engine.
// Postgres is created and migrated when missing; demo mode seeds the in-memory store.
func New(ctx context.Context, conf *core.Config, logger core.Logger) (*Container, error) {
	validate, translator := NewValidator()
	c := &Container{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
	}

	switch conf.Database.Engine {
	case core.EngineMemory:
		db := inmemdb.Open()
		c.Stores = Stores{
			Students:     inmemdb.NewStudentRepository(db),
			Interactions: inmemdb.NewInteractionRepository(db),
			Notes:        inmemdb.NewNoteRepository(db),
			Reminders:    inmemdb.NewReminderRepository(db),
			Accounts:     inmemdb.NewAccountRepository(db),
		}

	case core.EnginePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		if err = database.Migrate(db.DB, "up"); err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Stores = Stores{
			Students:     sqlxrepos.NewStudentRepository(db),
			Interactions: sqlxrepos.NewInteractionRepository(db),
			Notes:        sqlxrepos.NewNoteRepository(db),
			Reminders:    sqlxrepos.NewReminderRepository(db),
			Accounts:     sqlxrepos.NewAccountRepository(db),
		}

	case core.EngineMongoDB:
		db, err := mongorepos.Connect(ctx, conf)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error { return db.Client().Disconnect(context.Background()) })
		if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Stores = Stores{
			Students:     mongorepos.NewStudentRepository(db),
			Interactions: mongorepos.NewInteractionRepository(db),
			Notes:        mongorepos.NewNoteRepository(db),
			Reminders:    mongorepos.NewReminderRepository(db),
			Accounts:     mongorepos.NewAccountRepository(db),
		}

	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	if conf.DemoMode {
		rep, err := c.Seed(ctx)
		if err != nil {
			_ = c.Close()
			return nil, errors.Wrap(err, "seeding demo data")
		}
		logger.Info(fmt.Sprintf("demo data loaded: %d students", rep.Students))
	}
	return c, nil
}

// Close releases the database connections in reverse opening order.
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *Container) Seed(ctx context.Context) (seed.Report, error) {
	return seed.Load(ctx, seed.Stores{
		Students:     c.Stores.Students,
		Interactions: c.Stores.Interactions,
		Notes:        c.Stores.Notes,
		Reminders:    c.Stores.Reminders,
	})
}

func (c *Container) Services() Services {
	interactionSvc := interaction.NewService(c.Stores.Interactions, c.Stores.Students, c.Validate)
	studentSvc := student.NewService(c.Stores.Students, interactionSvc, c.Validate, c.Conf.Pipeline)
	noteSvc := note.NewService(c.Stores.Notes, c.Validate)
	reminderSvc := reminder.NewService(c.Stores.Reminders, c.Validate)
	return Services{
		Students:     studentSvc,
		Interactions: interactionSvc,
		Notes:        noteSvc,
		Reminders:    reminderSvc,
		Profiles:     profile.NewService(studentSvc, interactionSvc, noteSvc, reminderSvc, nil),
	}
}

func (c *Container) Identity() (identity.Provider, error) {
	switch c.Conf.Identity.Provider {
	case identitysvc.ProviderLocal, "":
		return identitysvc.NewLocalProvider(c.Stores.Accounts), nil
	case identitysvc.ProviderDemo:
		return identitysvc.NewDemoProvider(), nil
	}
	return nil, errors.Errorf("unknown identity provider %q", c.Conf.Identity.Provider)
}

// Sessions keeps revoked tokens in Redis when an address is configured, in memory otherwise.
func (c *Container) Sessions(ctx context.Context) (sessionsvc.Store, error) {
	if c.Conf.Redis.Address == "" {
		return sessionsvc.NewMemoryStore(), nil
	}
	client, err := sessionsvc.NewRedisClient(ctx, c.Conf.Redis)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	return sessionsvc.NewRedisStore(client), nil
}

func (c *Container) Mailer() (core.EmailService, error) {
	switch c.Conf.Email.Provider {
	case EmailConsole, "":
		return emailsvc.NewConsoleService(c.Conf, nil), nil
	case EmailSendgrid:
		return emailsvc.NewSendgridService(c.Conf, c.Logger), nil
	}
	return nil, errors.Errorf("unknown email provider %q", c.Conf.Email.Provider)
}

// StudentNamer resolves names for the reminder digest; unknown students render as their id.
func (c *Container) StudentNamer() reminder.StudentNamer {
	return func(ctx context.Context, studentID string) string {
		s, err := c.Stores.Students.GetStudent(ctx, studentID)
		if err != nil {
			return ""
		}
		return s.Name
	}
}
