// Package blob stores attachment content on the local filesystem. The
// metadata layer only ever sees generated names, so path traversal via client
// input is rejected here as a second line of defense.
package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core/file"
)

var errBadName = errors.New("invalid blob name")

type localStorage struct {
	dir string
}

// NewLocalStorage ensures dir exists and returns a disk-backed blob store.
func NewLocalStorage(dir string) (file.Blob, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &localStorage{dir: dir}, nil
}

func (s *localStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errBadName
	}
	return filepath.Join(s.dir, name), nil
}

func (s *localStorage) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, "creating blob")
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return 0, errors.Wrap(err, "writing blob")
	}
	return n, nil
}

func (s *localStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, file.ErrNotFound
		}
		return nil, errors.Wrap(err, "opening blob")
	}
	return f, nil
}

func (s *localStorage) Remove(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing blob")
	}
	return nil
}
