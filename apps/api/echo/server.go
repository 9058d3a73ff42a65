package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/academics"
	"github.com/trezcool/campus/core/assessment"
	"github.com/trezcool/campus/core/information"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/services/metrics"
	"github.com/trezcool/campus/storage/database"
)

const healthTimeout = 2 * time.Second

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		DB         core.DB
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metrics.Metrics

		UserSvc        user.ServiceInterface
		AcademicsSvc   *academics.Service
		AssessmentSvc  *assessment.Service
		InformationSvc *information.Service
	}

	Server struct {
		*http.Server
		app      *echo.Echo
		deps     *ServerDeps
		tokens   *Tokens
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	app := echo.New()
	app.HideBanner = true
	app.HidePort = true

	s := &Server{
		Server: &http.Server{
			Addr:         deps.Conf.Server.Address,
			Handler:      app,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		app:      app,
		deps:     &deps,
		tokens:   NewTokens(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(s.requestLogger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Server.MaxUploadSize > 0 {
		s.app.Use(middleware.BodyLimit(strconv.FormatInt(conf.Server.MaxUploadSize, 10)))
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.deps.Metrics, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/healthz", s.health)
	s.app.Static(strings.TrimSuffix(conf.Media.URL, "/"), conf.Media.Root)

	auth := []echo.MiddlewareFunc{jwtMiddleware(s.tokens), ctxUserMiddleware(s.deps.UserSvc)}
	root := s.app.Group("")

	cg := s.app.Group("/core")
	registerTokenAPI(cg, s.deps, s.tokens)
	registerUserAPI(cg, s.deps.UserSvc, s.deps.InformationSvc, auth...)
	registerAcademicsAPI(root, s.deps.AcademicsSvc, auth...)
	registerAssessmentAPI(root, s.deps.AssessmentSvc, auth...)
	registerInformationAPI(root, s.deps.InformationSvc, auth...)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.deps.Logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
			)
			return nil
		},
	})
}

// Start listens until the server is shut down; failures are reported on Errors.
func (s *Server) Start() {
	s.deps.Logger.Info("API listening on " + s.Addr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// ServeHTTP lets tests drive the app without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

func (s *Server) health(ctx echo.Context) error {
	c, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
	defer cancel()

	status := "ok"
	var err error
	if s.deps.Metrics != nil {
		err = s.deps.Metrics.PingDB(c, s.deps.DB)
	}
	if err == nil {
		err = database.StatusCheck(c, s.deps.DB)
	}
	if err != nil {
		s.deps.Logger.Warn("health check failed", err)
		status = "db not ready"
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": status, "build": s.deps.Conf.Build})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": status, "build": s.deps.Conf.Build})
}
