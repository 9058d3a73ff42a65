package files

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

// LocalStorage keeps uploaded files on disk under root; they are served under baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(conf *core.Config) *LocalStorage {
	base := conf.Media.URL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &LocalStorage{root: conf.Media.Root, baseURL: base}
}

func (s *LocalStorage) Root() string { return s.root }

// Save writes content to dir/<uuid><ext> and returns that slash-separated name.
func (s *LocalStorage) Save(ctx context.Context, dir, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := path.Join(dir, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	full := s.path(name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing upload")
	}
	return name, nil
}

// Delete removes name. Missing files are ignored.
func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return s.baseURL + strings.TrimPrefix(name, "/")
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+name)))
}
