package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/campus/core"
)

type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	PasswordHash []byte     `db:"password_hash"`
	IsActive     bool       `db:"is_active"`
	IsStaff      bool       `db:"is_staff"`
	IsSuperuser  bool       `db:"is_superuser"`
	DateJoined   time.Time  `db:"date_joined"` // UTC
	LastLogin    *time.Time `db:"last_login"`  // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// IsAdmin reports whether the user may manage other users.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Name        string `json:"name" validate:"max=255"`
	Password    string `json:"password" validate:"required"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// An empty Password keeps the current one.
type UpdateUser struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Name        string `json:"name" validate:"max=255"`
	Password    string `json:"password"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Name = core.CleanString(uu.Name)
	return validate.Struct(uu)
}
