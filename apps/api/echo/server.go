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

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
	"github.com/AcaDesk/acadesk-server/core/billing"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/exam"
	"github.com/AcaDesk/acadesk-server/core/library"
	"github.com/AcaDesk/acadesk-server/core/notification"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
)

// ServerDeps regroups all the dependencies needed by the Server.
type ServerDeps struct {
	Conf   *core.Config
	Logger core.Logger

	UserSvc         *user.Service
	StudentSvc      *student.Service
	ClassSvc        *class.Service
	ExamSvc         *exam.Service
	AttendanceSvc   *attendance.Service
	BillingSvc      *billing.Service
	LibrarySvc      *library.Service
	NotificationSvc *notification.Service

	Validate   *validator.Validate
	Translator ut.Translator
}

type Server struct {
	deps ServerDeps
	app  *echo.Echo

	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
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
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := configureAuth(conf)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate)
	registerStudentAPI(v1, jwt, s.deps.StudentSvc, s.deps.LibrarySvc, s.deps.Validate)
	registerClassAPI(v1, jwt, s.deps.ClassSvc, s.deps.Validate)
	registerGradebookAPI(v1, jwt, s.deps.ExamSvc, s.deps.ClassSvc, s.deps.Validate, conf)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.ClassSvc, s.deps.Validate, conf)
	registerBillingAPI(v1, jwt, s.deps.BillingSvc, s.deps.Validate)
	registerLibraryAPI(v1, jwt, s.deps.LibrarySvc, s.deps.Validate)
	registerNotificationAPI(v1, jwt, s.deps.NotificationSvc, s.deps.Validate)
}

// Start serves the API and reports server failures on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown requests a graceful stop, as if SIGTERM was received.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to AcaDesk API!")
}
