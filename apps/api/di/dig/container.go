package dig_container

import (
	"context"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/campus/apps/api/echo"
	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/academics"
	"github.com/trezcool/campus/core/assessment"
	"github.com/trezcool/campus/core/information"
	"github.com/trezcool/campus/core/user"
	logsvc "github.com/trezcool/campus/services/logger"
	"github.com/trezcool/campus/services/metrics"
	"github.com/trezcool/campus/storage/database"
	sqlxrepos "github.com/trezcool/campus/storage/database/sqlx"
	"github.com/trezcool/campus/storage/files"
)

type (
	LoggerParams struct {
		dig.In
		Logger   core.Logger `name:"apiLogger"`
		DBLogger core.Logger `name:"dbLogger"`
	}

	loggerResults struct {
		dig.Out
		Logger   core.Logger `name:"apiLogger"`
		DBLogger core.Logger `name:"dbLogger"`
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger `name:"apiLogger"`
		DB         core.DB
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metrics.Metrics

		UserSvc        user.ServiceInterface
		AcademicsSvc   *academics.Service
		AssessmentSvc  *assessment.Service
		InformationSvc *information.Service
	}
)

func newLoggers(conf *core.Config) (loggerResults, error) {
	logger, err := logsvc.NewLogger(conf)
	if err != nil {
		return loggerResults{}, errors.Wrap(err, "setting up logger")
	}
	return loggerResults{Logger: logger.Named("api"), DBLogger: logger.Named("db")}, nil
}

func newDB(conf *core.Config, lp LoggerParams) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		lp.DBLogger.Fatal("setting up database", err)
	}
	return db, db, db
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newInformationService(db core.DB, repo information.Repository, files information.FileStorage, validate *validator.Validate, lp LoggerParams) *information.Service {
	return information.NewService(db, repo, files, validate, lp.Logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		DB:             p.DB,
		Validate:       p.Validate,
		Translator:     p.Translator,
		Metrics:        p.Metrics,
		UserSvc:        p.UserSvc,
		AcademicsSvc:   p.AcademicsSvc,
		AssessmentSvc:  p.AssessmentSvc,
		InformationSvc: p.InformationSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLoggers))
	must(c.Provide(newDB))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(metrics.New))
	must(c.Provide(files.NewLocalStorage, dig.As(new(information.FileStorage))))

	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewAcademicsRepository, dig.As(new(academics.Repository))))
	must(c.Provide(sqlxrepos.NewAssessmentRepository, dig.As(new(assessment.Repository))))
	must(c.Provide(sqlxrepos.NewInformationRepository, dig.As(new(information.Repository))))

	must(c.Provide(user.NewService))
	must(c.Provide(academics.NewService))
	must(c.Provide(assessment.NewService))
	must(c.Provide(newInformationService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
