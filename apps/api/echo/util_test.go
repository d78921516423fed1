package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
	"github.com/AcaDesk/acadesk-server/core/billing"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/exam"
	"github.com/AcaDesk/acadesk-server/core/library"
	"github.com/AcaDesk/acadesk-server/core/notification"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
	appfs "github.com/AcaDesk/acadesk-server/fs"
	emailsvc "github.com/AcaDesk/acadesk-server/services/email"
	logsvc "github.com/AcaDesk/acadesk-server/services/logger"
	dummydb "github.com/AcaDesk/acadesk-server/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

// testEnv regroups a fully wired in-memory server and its services so tests
// can seed data directly.
type testEnv struct {
	conf   *core.Config
	server *Server

	usrSvc *user.Service
	stdSvc *student.Service
	clsSvc *class.Service
	exmSvc *exam.Service
	attSvc *attendance.Service
	bilSvc *billing.Service
	libSvc *library.Service
	ntfSvc *notification.Service

	usrRepo user.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "AcaDesk",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Name: "AcaDesk", Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	// long enough that no silent commit fires mid-test
	conf.Entry.AutosaveDelay = time.Hour
	conf.Entry.PassMark = 60

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lshortfile), conf)
	logger.Enable(false)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("newTestEnv() failed: %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	core.ParseEmailTemplates(appfs.FS, logger)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	env := &testEnv{
		conf:    conf,
		usrRepo: dummydb.NewUserRepository(db),
	}
	env.usrSvc = user.NewService(conf, env.usrRepo, mailSvc, logger)
	env.stdSvc = student.NewService(dummydb.NewStudentRepository(db), logger)
	env.clsSvc = class.NewService(dummydb.NewClassRepository(db), logger)
	env.exmSvc = exam.NewService(dummydb.NewExamRepository(db), logger)
	env.attSvc = attendance.NewService(dummydb.NewAttendanceRepository(db), logger)
	env.bilSvc = billing.NewService(dummydb.NewBillingRepository(db), logger)
	env.libSvc = library.NewService(dummydb.NewLibraryRepository(db), logger)
	env.ntfSvc = notification.NewService(dummydb.NewNotificationRepository(db), mailSvc, logger)

	env.server = NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		UserSvc:         env.usrSvc,
		StudentSvc:      env.stdSvc,
		ClassSvc:        env.clsSvc,
		ExamSvc:         env.exmSvc,
		AttendanceSvc:   env.attSvc,
		BillingSvc:      env.bilSvc,
		LibrarySvc:      env.libSvc,
		NotificationSvc: env.ntfSvc,
		Validate:        validate,
		Translator:      translator,
	})
	return env
}

func (env *testEnv) createUser(
	t *testing.T,
	orgID, name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		OrgID:     orgID,
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
