package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/campus/apps/api/echo"
	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/academics"
	"github.com/trezcool/campus/core/assessment"
	"github.com/trezcool/campus/core/information"
	"github.com/trezcool/campus/core/user"
	logsvc "github.com/trezcool/campus/services/logger"
	"github.com/trezcool/campus/services/metrics"
	sqlxrepos "github.com/trezcool/campus/storage/database/sqlx"
	"github.com/trezcool/campus/storage/files"
	"github.com/trezcool/campus/tests"
)

const (
	host = "http://example.com" // httptest.NewRequest default

	staffPwd   = "staff-pwd-123"
	studentPwd = "student-pwd-123"
)

var (
	errMissingToken = httpErr{Error: "authentication credentials were not provided"}
	errNotFound     = httpErr{Error: "not found"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// testApp is a server backed by a fresh database, with a staff and a student account.
type testApp struct {
	*Server
	db        *sqlx.DB
	conf      *core.Config
	usrRepo   user.Repository
	staff     user.User
	student   user.User
	staffTok  string
	studentTk string
}

func setup(t *testing.T) *testApp {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)

	conf := core.NewTestConfig(t.TempDir())
	validate, translator := testutil.NewValidator()
	logger := logsvc.NewNopLogger()

	// set up server
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		DB:             db,
		Validate:       validate,
		Translator:     translator,
		Metrics:        metrics.New(),
		UserSvc:        user.NewService(usrRepo, validate),
		AcademicsSvc:   academics.NewService(db, sqlxrepos.NewAcademicsRepository(db), validate),
		AssessmentSvc:  assessment.NewService(db, sqlxrepos.NewAssessmentRepository(db), validate),
		InformationSvc: information.NewService(db, sqlxrepos.NewInformationRepository(db), files.NewLocalStorage(conf), validate, logger),
	})

	app := &testApp{Server: srv, db: db, conf: conf, usrRepo: usrRepo}
	app.staff = testutil.CreateUser(t, usrRepo, "Staff", "staff@test.cd", staffPwd, true, true)
	app.student = testutil.CreateUser(t, usrRepo, "Student", "student@test.cd", studentPwd, false, true)
	app.staffTok = getToken(t, conf, app.staff)
	app.studentTk = getToken(t, conf, app.student)
	return app
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
	extra    interface{}
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

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := NewTokens(conf).Access(usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// call performs an authenticated JSON request and decodes the response object.
func (app *testApp) call(t *testing.T, method, path, token string, body interface{}, wantCode int) map[string]interface{} {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		data = b
	default:
		data = marshallObj(t, b)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.ServeHTTP(rec, req)
	require.Equal(t, wantCode, rec.Code, "%s %s: %s", method, path, rec.Body.String())

	if rec.Body.Len() == 0 {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &obj); err != nil {
		return nil // lists
	}
	return obj
}

func (app *testApp) list(t *testing.T, path, token string) []map[string]interface{} {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, path, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var objs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objs))
	return objs
}

func url(route string, id interface{}) string {
	switch v := id.(type) {
	case float64:
		return fmt.Sprintf("%s/%s/%d/", host, route, int64(v))
	default:
		return fmt.Sprintf("%s/%s/%v/", host, route, v)
	}
}

func path(route string, id ...interface{}) string {
	if len(id) == 0 {
		return "/" + route + "/"
	}
	return url(route, id[0])[len(host):]
}

func testContext() context.Context {
	return context.Background()
}
