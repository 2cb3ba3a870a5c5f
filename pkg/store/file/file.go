// Package file implements a family store backed by a JSON or TOML family
// file. The whole file is rewritten atomically after every mutation.
package file

import (
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
	fio "github.com/firemesscode/drevorod/pkg/io"
	"github.com/firemesscode/drevorod/pkg/store/memory"
)

// Store is a memory store that writes through to a family file.
type Store struct {
	*memory.Store
	path string
}

// Open loads path, or starts empty when the file does not exist yet. The
// file is created by the first mutation.
func Open(path string) (*Store, error) {
	if _, err := fio.FormatFromPath(path); err != nil {
		return nil, err
	}
	snap, err := fio.ImportFile(path)
	if err != nil && !errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, err
	}
	return &Store{
		Store: memory.New(snap, memory.WithPersist(func(next family.Snapshot) error {
			return fio.ExportFile(next, path)
		})),
		path: path,
	}, nil
}

// Path returns the family file path.
func (s *Store) Path() string { return s.path }
