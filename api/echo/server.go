package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/draft"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/stats"
	"github.com/almajirisurvey/backend/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc   *user.Service
		TokenSvc  *user.TokenService
		SchoolSvc *school.Service
		BeggarSvc *beggar.Service
		DraftSvc  *draft.Service
		FileSvc   *file.Service
		StatsSvc  *stats.Service

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET("/health", health)

	v1 := s.app.Group("/v1")
	auth := authMiddleware(s.deps.TokenSvc, s.deps.UserSvc)

	usrAPI := &userApi{svc: s.deps.UserSvc, tokens: s.deps.TokenSvc, validate: s.deps.Validate}
	registerAuthAPI(v1, auth, usrAPI)
	registerUserAPI(v1, auth, usrAPI)
	registerSchoolAPI(v1, auth, &schoolApi{svc: s.deps.SchoolSvc, validate: s.deps.Validate})
	registerBeggarAPI(v1, auth, &beggarApi{svc: s.deps.BeggarSvc, validate: s.deps.Validate})
	registerDraftAPI(v1, auth, &draftApi{svc: s.deps.DraftSvc, validate: s.deps.Validate})
	registerFileAPI(v1, auth, &fileApi{svc: s.deps.FileSvc})
	registerAnalyticsAPI(v1, auth, &statsApi{svc: s.deps.StatsSvc})
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown lets the error handler request a graceful stop when an
// unrecoverable error is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Almajiri Survey API!")
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
