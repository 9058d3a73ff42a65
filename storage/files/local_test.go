package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
)

func newStorage(t *testing.T) *LocalStorage {
	conf := &core.Config{Media: core.MediaConfig{Root: t.TempDir(), URL: "/media"}}
	return NewLocalStorage(conf)
}

func TestLocalStorage(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	name, err := s.Save(ctx, "images/2024/01/02", "Logo.PNG", []byte("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "images/2024/01/02/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, "/media/"+name, s.URL(name))

	content, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	other, err := s.Save(ctx, "images/2024/01/02", "Logo.PNG", []byte("data"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(name)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(name), "deleting a missing file")
}

func TestLocalStorageStaysUnderRoot(t *testing.T) {
	s := newStorage(t)
	assert.Equal(t, filepath.Join(s.Root(), "etc", "passwd"), s.path("../../etc/passwd"))
}
