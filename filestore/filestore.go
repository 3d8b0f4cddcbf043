// Package filestore implements upload.Store on the local filesystem.
// Each blob lives in its own directory named by the generated id, the
// single file inside keeps the original (cleaned) filename.
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/lwestrich/papershelf/core"
	"github.com/lwestrich/papershelf/upload"
	"github.com/lwestrich/papershelf/util"
)

type Store struct {
	Dir string
}

func (s *Store) path(id string) string {
	return filepath.Join(s.Dir, id)
}

func (s *Store) Store(filename string, data []byte) (string, error) {

	if len(data) == 0 {
		return "", core.ValidationError("uploaded file is empty")
	}

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return "", core.ValidationError(err.Error())
	}

	id, err := util.RandomString32()
	if err != nil {
		return "", err
	}

	// 755 is required if the webserver runs as a different user
	if err := os.MkdirAll(s.path(id), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(s.path(id), filename), data, 0644); err != nil {
		return "", err
	}

	return id, nil
}

func (s *Store) Open(id string) (io.ReadSeekCloser, error) {

	if !upload.ValidID(id) {
		return nil, core.ErrNotFound
	}

	entries, err := os.ReadDir(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if len(entries) == 0 {
		return nil, core.ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.path(id), entries[0].Name()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *Store) Delete(id string) error {
	if !upload.ValidID(id) {
		return nil // nothing is ever stored under a malformed id
	}
	return os.RemoveAll(s.path(id)) // no error if the blob is already absent
}
