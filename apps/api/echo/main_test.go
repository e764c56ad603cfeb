package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/solomonake/student-crm-dashboard/apps/api/echo"
	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
	"github.com/solomonake/student-crm-dashboard/core/interaction"
	"github.com/solomonake/student-crm-dashboard/core/note"
	"github.com/solomonake/student-crm-dashboard/core/profile"
	"github.com/solomonake/student-crm-dashboard/core/reminder"
	"github.com/solomonake/student-crm-dashboard/core/stage"
	"github.com/solomonake/student-crm-dashboard/core/student"
	identitysvc "github.com/solomonake/student-crm-dashboard/services/identity"
	logsvc "github.com/solomonake/student-crm-dashboard/services/logger"
	sessionsvc "github.com/solomonake/student-crm-dashboard/services/session"
	inmemdb "github.com/solomonake/student-crm-dashboard/storage/database/inmem"
)

const (
	counselorEmail = "counselor@example.com"
	counselorPwd   = "Str0ng&Secret"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	app       Server
	tokens    *TokenIssuer
	students  *student.Service
	counselor identity.Principal
	token     string
}

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Student CRM",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Pipeline: core.PipelineConfig{StaleThresholdDays: 7, AllowStageRegression: true},
	}
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := testConfig()

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	stage.InitValidators(validate, translator)
	interaction.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	studentRepo := inmemdb.NewStudentRepository(db)

	// set up services
	interactionSvc := interaction.NewService(inmemdb.NewInteractionRepository(db), studentRepo, validate)
	studentSvc := student.NewService(studentRepo, interactionSvc, validate, conf.Pipeline)
	noteSvc := note.NewService(inmemdb.NewNoteRepository(db), validate)
	reminderSvc := reminder.NewService(inmemdb.NewReminderRepository(db), validate)
	provider := identitysvc.NewLocalProvider(inmemdb.NewAccountRepository(db))

	counselor, err := provider.Signup(context.Background(), identity.Signup{
		Name:            "Ada Counselor",
		Email:           counselorEmail,
		Password:        counselorPwd,
		PasswordConfirm: counselorPwd,
	})
	require.NoError(t, err)

	// set up server
	app := NewServer(
		&Options{
			Conf:       conf,
			Logger:     logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
			Validate:   validate,
			Translator: translator,
		},
		&Deps{
			Identity:     provider,
			Sessions:     sessionsvc.NewMemoryStore(),
			Students:     studentSvc,
			Interactions: interactionSvc,
			Notes:        noteSvc,
			Reminders:    reminderSvc,
			Profiles:     profile.NewService(studentSvc, interactionSvc, noteSvc, reminderSvc, nil),
		},
	)

	tokens := NewTokenIssuer(conf)
	return fixture{
		app:       app,
		tokens:    tokens,
		students:  studentSvc,
		counselor: counselor,
		token:     getToken(t, tokens, counselor),
	}
}

func (f fixture) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f fixture) createStudent(t *testing.T, name, status string) student.Student {
	t.Helper()
	s, err := f.students.Create(context.Background(), student.NewStudent{
		Name:              name,
		Email:             "student@example.com",
		Country:           "India",
		ApplicationStatus: status,
	})
	require.NoError(t, err)
	return s
}

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

func getToken(t *testing.T, tokens *TokenIssuer, p identity.Principal) string {
	token, err := tokens.Generate(tokens.Claims(p))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarchall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
