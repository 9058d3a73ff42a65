package tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/campus/apps/api/echo"
	"github.com/trezcool/campus/tests"
)

func Test_server_operational(t *testing.T) {
	app := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Campus API!", rec.Body.String())

	runHTTPTests(t, app, []httpTest{
		{name: "healthz", method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK, wantData: []byte(`{"status": "ok", "build": "develop"}`)},
	})

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campus_http_requests_total")
}

func Test_tokenApi(t *testing.T) {
	app := setup(t)
	inactive := testutil.CreateUser(t, app.usrRepo, "Gone", "gone@test.cd", "gone-pwd-123", false, false)

	errAuth := httpErr{Error: "no active account found with the given credentials"}
	errToken := httpErr{Error: "token is invalid or expired"}

	tests := []httpTest{
		{
			name: "obtain: missing fields", method: http.MethodPost, path: "/core/token", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email": "this field is required", "password": "this field is required"}`),
		},
		{
			name: "obtain: wrong password", method: http.MethodPost, path: "/core/token",
			body:     marshallObj(t, TokenObtainRequest{Email: app.student.Email, Password: "nope"}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errAuth),
		},
		{
			name: "obtain: unknown user", method: http.MethodPost, path: "/core/token",
			body:     marshallObj(t, TokenObtainRequest{Email: "who@test.cd", Password: "nope"}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errAuth),
		},
		{
			name: "obtain: inactive user", method: http.MethodPost, path: "/core/token",
			body:     marshallObj(t, TokenObtainRequest{Email: inactive.Email, Password: "gone-pwd-123"}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errAuth),
		},
		{
			name: "verify: garbage", method: http.MethodPost, path: "/core/token/verify",
			body: []byte(`{"token": "lol"}`), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errToken),
		},
		{
			name: "refresh: access token", method: http.MethodPost, path: "/core/token/refresh",
			body:     marshallObj(t, TokenRefreshRequest{Refresh: app.studentTk}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errToken),
		},
	}
	runHTTPTests(t, app, tests)

	// obtain, verify, refresh then use the new access token
	obtained := app.call(t, http.MethodPost, "/core/token", "", TokenObtainRequest{Email: strings.ToUpper(app.student.Email), Password: studentPwd}, http.StatusOK)
	require.NotEmpty(t, obtained["access"])
	require.NotEmpty(t, obtained["refresh"])

	got := app.call(t, http.MethodPost, "/core/token/verify", "", TokenVerifyRequest{Token: obtained["refresh"].(string)}, http.StatusOK)
	assert.Empty(t, got)

	refreshed := app.call(t, http.MethodPost, "/core/token/refresh", "", TokenRefreshRequest{Refresh: obtained["refresh"].(string)}, http.StatusOK)
	access := refreshed["access"].(string)
	require.NotEmpty(t, access)

	app.list(t, "/academics/faculty", access)

	usr, err := app.usrRepo.GetUserByID(testContext(), app.student.ID)
	require.NoError(t, err)
	assert.NotNil(t, usr.LastLogin)

	t.Run("refresh: user deactivated", func(t *testing.T) {
		usr.IsActive = false
		_, err := app.usrRepo.UpdateUser(testContext(), usr)
		require.NoError(t, err)

		app.call(t, http.MethodPost, "/core/token/refresh", "", TokenRefreshRequest{Refresh: obtained["refresh"].(string)}, http.StatusUnauthorized)
		app.call(t, http.MethodGet, "/academics/faculty", access, nil, http.StatusUnauthorized)
	})
}

func Test_userApi(t *testing.T) {
	app := setup(t)
	tok := app.staffTok

	tests := []httpTest{
		{name: "list: no token", method: http.MethodGet, path: "/core/user", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "list: not staff", method: http.MethodGet, path: "/core/user", token: app.studentTk, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{name: "retrieve: not staff", method: http.MethodGet, path: path(userRoute, app.staff.ID), token: app.studentTk, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{
			name: "create: missing password", method: http.MethodPost, path: "/core/user", token: tok,
			body: []byte(`{"email": "new@test.cd"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"password": "this field is required"}`),
		},
		{
			name: "create: short password", method: http.MethodPost, path: "/core/user", token: tok,
			body:     []byte(`{"email": "new@test.cd", "password": "abc"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password": "ensure this field has at least 4 characters"}`),
		},
		{
			name: "create: duplicate email", method: http.MethodPost, path: "/core/user", token: tok,
			body:     []byte(`{"email": "STAFF@test.cd", "password": "a-long-password"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email": "user with this email already exists."}`),
		},
	}
	runHTTPTests(t, app, tests)

	users := app.list(t, "/core/user?ordering=-email", tok)
	require.Len(t, users, 2)
	assert.Equal(t, app.student.Email, users[0]["email"])
	for _, u := range users {
		_, hasPwd := u["password"]
		assert.False(t, hasPwd)
	}

	created := app.call(t, http.MethodPost, "/core/user", tok, map[string]interface{}{
		"email":    "Lecturer@Test.cd",
		"name":     "Lecturer",
		"password": "blackboard-42",
	}, http.StatusCreated)
	assert.Equal(t, "lecturer@test.cd", created["email"])
	assert.Equal(t, true, created["is_active"])
	assert.Equal(t, false, created["is_staff"])
	assert.Nil(t, created["last_login"])
	_, hasPwd := created["password"]
	assert.False(t, hasPwd)

	app.call(t, http.MethodPost, "/core/token", "", TokenObtainRequest{Email: "lecturer@test.cd", Password: "blackboard-42"}, http.StatusOK)

	t.Run("partial update keeps the password", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(userRoute, created["id"]), tok, map[string]interface{}{"is_staff": true}, http.StatusOK)
		assert.Equal(t, true, got["is_staff"])
		assert.Equal(t, "Lecturer", got["name"])
		app.call(t, http.MethodPost, "/core/token", "", TokenObtainRequest{Email: "lecturer@test.cd", Password: "blackboard-42"}, http.StatusOK)
	})

	t.Run("update re-hashes a supplied password", func(t *testing.T) {
		app.call(t, http.MethodPatch, path(userRoute, created["id"]), tok, map[string]interface{}{"password": "whiteboard-42"}, http.StatusOK)
		app.call(t, http.MethodPost, "/core/token", "", TokenObtainRequest{Email: "lecturer@test.cd", Password: "blackboard-42"}, http.StatusUnauthorized)
		app.call(t, http.MethodPost, "/core/token", "", TokenObtainRequest{Email: "lecturer@test.cd", Password: "whiteboard-42"}, http.StatusOK)
	})

	t.Run("delete", func(t *testing.T) {
		app.call(t, http.MethodDelete, path(userRoute, created["id"]), tok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(userRoute, created["id"]), tok, nil, http.StatusNotFound)
	})
}
