package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each blob in its own file. Ids are file paths, resolved
// against dir when they are relative and dir is set.
type FileStore struct{ dir string }

func NewFileStore(dir string) *FileStore {
	if dir != "" {
		_ = os.MkdirAll(dir, 0o700)
	}
	return &FileStore{dir: dir}
}

func (f *FileStore) path(id string) string {
	if f.dir == "" || filepath.IsAbs(id) {
		return filepath.Clean(id)
	}
	return filepath.Join(f.dir, id)
}

// Put writes to a temporary file next to the target and renames it over
// the target.
func (f *FileStore) Put(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return errors.New("empty id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target := f.path(id)
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return fmt.Errorf("storage: creating %s: %w", filepath.Dir(target), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("storage: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: writing %s: %w", target, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}

func (f *FileStore) Get(_ context.Context, id string) ([]byte, error) {
	b, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
