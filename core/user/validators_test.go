package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
)

func newValidator() (*validator.Validate, func(error) map[string]string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	return validate, func(err error) map[string]string {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		msgs := make(map[string]string, len(vErrs))
		for _, e := range vErrs {
			msgs[e.Field()] = e.Translate(translator)
		}
		return msgs
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate, translate := newValidator()

	tests := []struct {
		name string
		nu   NewUser
		want map[string]string
	}{
		{name: "valid", nu: NewUser{Email: " Jane@Test.cd ", Name: "Jane", Password: "correct-horse"}},
		{
			name: "missing fields",
			nu:   NewUser{},
			want: map[string]string{"email": "this field is required", "password": "this field is required"},
		},
		{
			name: "invalid email",
			nu:   NewUser{Email: "jane", Password: "correct-horse"},
			want: map[string]string{"email": "email must be a valid email address"},
		},
		{
			name: "short password",
			nu:   NewUser{Email: "jane@test.cd", Password: "abc"},
			want: map[string]string{"password": "ensure this field has at least 4 characters"},
		},
		{
			name: "password like the name",
			nu:   NewUser{Email: "x@test.cd", Name: "Bartholomew", Password: "bartholomew1"},
			want: map[string]string{"password": "the password is too similar to the email or name"},
		},
		{
			name: "password like the email",
			nu:   NewUser{Email: "bartholomew@test.cd", Password: "Bartholomew"},
			want: map[string]string{"password": "the password is too similar to the email or name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, translate(err))
		})
	}
}

func TestNewUser_ValidateCleans(t *testing.T) {
	validate, _ := newValidator()
	nu := NewUser{Email: " Jane@Test.CD ", Name: "  Jane Doe ", Password: "correct-horse"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "jane@test.cd", nu.Email)
	assert.Equal(t, "Jane Doe", nu.Name)
}

func TestUpdateUser_Validate(t *testing.T) {
	validate, translate := newValidator()

	// an empty password keeps the current one
	uu := UpdateUser{Email: "jane@test.cd"}
	assert.NoError(t, uu.Validate(validate))

	uu.Password = "ab"
	assert.Equal(t, map[string]string{"password": "ensure this field has at least 4 characters"}, translate(uu.Validate(validate)))
}

func TestUser_Password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("correct-horse"))
	assert.NotEqual(t, []byte("correct-horse"), usr.PasswordHash)
	assert.NoError(t, usr.CheckPassword("correct-horse"))
	assert.Error(t, usr.CheckPassword("wrong-horse"))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.False(t, (&User{}).IsAdmin())
	assert.True(t, (&User{IsStaff: true}).IsAdmin())
	assert.True(t, (&User{IsSuperuser: true}).IsAdmin())
}
