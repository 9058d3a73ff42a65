package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
	logsvc "github.com/trezcool/campus/services/logger"
)

// fakeUserSvc serves users from a map; only lookups are supported.
type fakeUserSvc struct {
	user.ServiceInterface
	users map[int64]user.User
}

func (svc fakeUserSvc) GetByID(_ context.Context, id int64) (user.User, error) {
	if usr, ok := svc.users[id]; ok {
		return usr, nil
	}
	return user.User{}, core.ErrNotFound
}

func newTestTokens() *Tokens {
	return &Tokens{
		key:             []byte("test-secret"),
		issuer:          "Campus",
		accessLifetime:  5 * time.Minute,
		refreshLifetime: 24 * time.Hour,
	}
}

func TestTokens(t *testing.T) {
	tokens := newTestTokens()
	usr := user.User{ID: 7, Email: "staff@test.cd", IsStaff: true}

	access, err := tokens.Access(usr)
	require.NoError(t, err)
	_, claims, err := tokens.Parse(access)
	require.NoError(t, err)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, "staff@test.cd", claims.Email)
	assert.True(t, claims.IsStaff)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	refresh, err := tokens.Refresh(usr)
	require.NoError(t, err)
	_, claims, err = tokens.Parse(refresh)
	require.NoError(t, err)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)

	t.Run("wrong key", func(t *testing.T) {
		other := newTestTokens()
		other.key = []byte("another-secret")
		_, _, err := other.Parse(access)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := newTestTokens()
		other.issuer = "Other"
		_, _, err := other.Parse(access)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		nowFunc = func() time.Time { return time.Now().Add(10 * time.Minute) }
		defer func() { nowFunc = time.Now }()

		_, _, err := tokens.Parse(access)
		assert.Error(t, err)
		_, _, err = tokens.Parse(refresh)
		assert.NoError(t, err)
	})
}

func TestAuthMiddlewares(t *testing.T) {
	tokens := newTestTokens()
	staff := user.User{ID: 1, Email: "staff@test.cd", IsActive: true, IsStaff: true}
	student := user.User{ID: 2, Email: "student@test.cd", IsActive: true}
	inactive := user.User{ID: 3, Email: "gone@test.cd"}
	deleted := user.User{ID: 4, Email: "deleted@test.cd", IsActive: true}
	svc := fakeUserSvc{users: map[int64]user.User{1: staff, 2: student, 3: inactive}}

	app := echo.New()
	app.HTTPErrorHandler = newAppHTTPErrorHandler(logsvc.NewNopLogger(), core.NewTranslator(), nil, func() {})
	g := app.Group("", jwtMiddleware(tokens), ctxUserMiddleware(svc))
	g.GET("/me", func(ctx echo.Context) error {
		usr, err := getContextUser(ctx)
		if err != nil {
			return err
		}
		return ctx.String(http.StatusOK, usr.Email)
	})
	g.GET("/admin", func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) }, adminMiddleware())

	token := func(usr user.User, refresh bool) string {
		var s string
		var err error
		if refresh {
			s, err = tokens.Refresh(usr)
		} else {
			s, err = tokens.Access(usr)
		}
		require.NoError(t, err)
		return "Bearer " + s
	}

	tests := []struct {
		name     string
		path     string
		auth     string
		wantCode int
		wantBody string
	}{
		{name: "no credentials", path: "/me", wantCode: http.StatusUnauthorized, wantBody: `{"error":"authentication credentials were not provided"}`},
		{name: "malformed", path: "/me", auth: "Bearer lol", wantCode: http.StatusUnauthorized, wantBody: `{"error":"token is invalid or expired"}`},
		{name: "refresh token", path: "/me", auth: token(student, true), wantCode: http.StatusUnauthorized, wantBody: `{"error":"token is invalid or expired"}`},
		{name: "inactive user", path: "/me", auth: token(inactive, false), wantCode: http.StatusUnauthorized, wantBody: `{"error":"user is inactive"}`},
		{name: "deleted user", path: "/me", auth: token(deleted, false), wantCode: http.StatusUnauthorized, wantBody: `{"error":"user not found"}`},
		{name: "ok", path: "/me", auth: token(student, false), wantCode: http.StatusOK, wantBody: "student@test.cd"},
		{name: "admin: forbidden", path: "/admin", auth: token(student, false), wantCode: http.StatusForbidden, wantBody: `{"error":"permission denied"}`},
		{name: "admin: ok", path: "/admin", auth: token(staff, false), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				if rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSONCharsetUTF8 ||
					rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSON {
					assert.JSONEq(t, tt.wantBody, rec.Body.String())
				} else {
					assert.Equal(t, tt.wantBody, rec.Body.String())
				}
			}
		})
	}
}
