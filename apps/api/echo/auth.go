package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	Email     string `json:"email,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
}

// UserID returns the id of the user the token was issued to.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Tokens issues and parses the HS256 access and refresh tokens.
type Tokens struct {
	key             []byte
	issuer          string
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

func NewTokens(conf *core.Config) *Tokens {
	return &Tokens{
		key:             []byte(conf.SecretKey),
		issuer:          conf.AppName,
		accessLifetime:  conf.JWT.AccessLifetime,
		refreshLifetime: conf.JWT.RefreshLifetime,
	}
}

func (t *Tokens) claims(usr user.User, tokenType string, lifetime time.Duration) *Claims {
	now := nowFunc()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(usr.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		TokenType: tokenType,
		Email:     usr.Email,
		IsStaff:   usr.IsStaff,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (t *Tokens) GenerateToken(claims *Claims) (string, error) {
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (t *Tokens) Access(usr user.User) (string, error) {
	return t.GenerateToken(t.claims(usr, tokenTypeAccess, t.accessLifetime))
}

func (t *Tokens) Refresh(usr user.User) (string, error) {
	return t.GenerateToken(t.claims(usr, tokenTypeRefresh, t.refreshLifetime))
}

// Parse validates the signature, issuer and expiry of a token and returns it with its Claims.
func (t *Tokens) Parse(tokenString string) (*jwt.Token, *Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (interface{}, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil {
		return nil, nil, err
	}
	if claims.TokenType != tokenTypeAccess && claims.TokenType != tokenTypeRefresh {
		return nil, nil, errors.New("unknown token type")
	}
	return token, claims, nil
}

// jwtMiddleware only lets valid access tokens through.
func jwtMiddleware(tokens *Tokens) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: contextTokenKey,
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			token, claims, err := tokens.Parse(auth)
			if err != nil {
				return nil, err
			}
			if claims.TokenType != tokenTypeAccess {
				return nil, errors.New("not an access token")
			}
			return token, nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			if ctx.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return errMissingCredentials
			}
			return errInvalidToken
		},
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errMissingCredentials
}

// getContextUser returns the user loaded by ctxUserMiddleware.
func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errMissingCredentials
}

// ctxUserMiddleware loads the token's user; deleted or deactivated accounts are rejected.
func ctxUserMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			id, err := claims.UserID()
			if err != nil {
				return errInvalidToken
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == core.ErrNotFound {
					return errUserNotFound
				}
				return errors.Wrap(err, "finding user by ID")
			}
			if !usr.IsActive {
				return errUserInactive
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

type (
	TokenObtainRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenObtainResponse struct {
		Refresh string `json:"refresh"`
		Access  string `json:"access"`
	}

	TokenVerifyRequest struct {
		Token string `json:"token" validate:"required"`
	}

	TokenRefreshRequest struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	TokenRefreshResponse struct {
		Access string `json:"access"`
	}
)

type tokenApi struct {
	deps   *ServerDeps
	tokens *Tokens
}

func registerTokenAPI(g *echo.Group, deps *ServerDeps, tokens *Tokens) {
	api := tokenApi{deps: deps, tokens: tokens}

	tg := g.Group("/token")
	tg.POST("", api.obtain)
	tg.POST("/verify", api.verify)
	tg.POST("/refresh", api.refresh)
}

func (api *tokenApi) obtain(ctx echo.Context) error {
	var data TokenObtainRequest
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredential {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	var resp TokenObtainResponse
	if resp.Refresh, err = api.tokens.Refresh(usr); err != nil {
		return err
	}
	if resp.Access, err = api.tokens.Access(usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *tokenApi) verify(ctx echo.Context) error {
	var data TokenVerifyRequest
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		return err
	}
	if _, _, err := api.tokens.Parse(data.Token); err != nil {
		return errInvalidToken
	}
	return ctx.JSON(http.StatusOK, echo.Map{})
}

func (api *tokenApi) refresh(ctx echo.Context) error {
	var data TokenRefreshRequest
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		return err
	}

	_, claims, err := api.tokens.Parse(data.Refresh)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return errInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return errInvalidToken
	}

	// check if user is still active
	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errInvalidToken
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return errUserInactive
	}

	access, err := api.tokens.Access(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenRefreshResponse{Access: access})
}
