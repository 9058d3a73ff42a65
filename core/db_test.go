package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"id": "id", "name": "name", "max_level": "max_level_id"}

	tests := []struct {
		name      string
		orderings []DBOrdering
		want      string
		wantErr   bool
	}{
		{name: "default", want: "id ASC"},
		{name: "single", orderings: []DBOrdering{{Field: "name", Ascending: true}}, want: "name ASC, id ASC"},
		{
			name:      "mapped column",
			orderings: []DBOrdering{{Field: "max_level"}, {Field: "name", Ascending: true}},
			want:      "max_level_id DESC, name ASC, id ASC",
		},
		{name: "unknown field", orderings: []DBOrdering{{Field: "password"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OrderBy(tt.orderings, allowed, "id ASC")
			if tt.wantErr {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "ordering", vErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidationError(t *testing.T) {
	var fe FieldErrors
	assert.NoError(t, fe.Err())

	fe.Add("name", "this field is required")
	fe.Add("code", "too long")
	err := fe.Err()
	require.Error(t, err)
	assert.Equal(t, "code: too long; name: this field is required", err.Error())

	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
	assert.Equal(t, "image: empty", NewFieldError("image", "empty").Error())
}

func TestShutdownError(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "handling request")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Hello World", CleanString("  Hello World \n"))
	assert.Equal(t, "me@test.cd", CleanString(" ME@Test.cd ", true))
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
}
