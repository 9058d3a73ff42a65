package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

var (
	// errors
	ErrNotFound          = core.ErrNotFound
	ErrInvalidCredential = errors.New("no active account found with the given credentials")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		QueryUsers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]User, error)
		GetUserByID(ctx context.Context, id int64, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		SetLastLogin(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
		DeleteUser(ctx context.Context, id int64, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, orderings []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id int64) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		Update(ctx context.Context, id int64, uu UpdateUser) (User, error)
		SetPassword(ctx context.Context, email, pwd string) (User, error)
		Delete(ctx context.Context, id int64) error
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*service)(nil)

// Orderings maps the `ordering` query fields to columns.
var Orderings = map[string]string{
	"id":          "id",
	"email":       "email",
	"name":        "name",
	"date_joined": "date_joined",
	"is_staff":    "is_staff",
	"is_active":   "is_active",
}

func NewService(repo Repository, validate *validator.Validate) ServiceInterface {
	return &service{repo: repo, validate: validate}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr := User{
		Email:       nu.Email,
		Name:        nu.Name,
		IsActive:    nu.IsActive,
		IsStaff:     nu.IsStaff,
		IsSuperuser: nu.IsSuperuser,
		DateJoined:  nowFunc(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, orderings []core.DBOrdering) ([]User, error) {
	orderBy, err := core.OrderBy(orderings, Orderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryUsers(ctx, orderBy)
}

func (svc *service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials of an active user and records the login.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return User{}, ErrInvalidCredential
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil || !usr.IsActive {
		return User{}, ErrInvalidCredential
	}
	now := nowFunc()
	if err = svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin = &now
	return usr, nil
}

func (svc *service) Update(ctx context.Context, id int64, uu UpdateUser) (User, error) {
	if err := uu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Email = uu.Email
	usr.Name = uu.Name
	usr.IsActive = uu.IsActive
	usr.IsStaff = uu.IsStaff
	usr.IsSuperuser = uu.IsSuperuser
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword replaces the password of the user identified by email.
func (svc *service) SetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	uu := UpdateUser{
		Email:       usr.Email,
		Name:        usr.Name,
		Password:    pwd,
		IsActive:    usr.IsActive,
		IsStaff:     usr.IsStaff,
		IsSuperuser: usr.IsSuperuser,
	}
	return svc.Update(ctx, usr.ID, uu)
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteUser(ctx, id)
}
