package confer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// FromFile reads path and returns a Store seeded with its contents.
func FromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError(path, err)
	}
	return FromString(string(data))
}

// FromFileContext is the context-aware variant of FromFile. It checks for
// cancellation before issuing the blocking read, mirroring the
// cancel-at-suspension-point guarantee spec.md requires for suspendable
// operations; the read itself cannot be interrupted mid-syscall.
func FromFileContext(ctx context.Context, path string) (*Store, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	return FromFile(path)
}

// LoadFile destructively replaces the Store's contents with the parsed
// contents of the file at path.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newIOError(path, err)
	}
	return s.LoadString(string(data))
}

// LoadFileContext is the context-aware variant of LoadFile.
func (s *Store) LoadFileContext(ctx context.Context, path string) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	return s.LoadFile(path)
}

// SaveFile serializes the Store's current contents and writes them
// atomically to path.
func (s *Store) SaveFile(path string) error {
	serialized, err := s.SaveString()
	if err != nil {
		return err
	}
	return atomicWriteFile(path, []byte(serialized))
}

// atomicWriteFile writes data to a temporary sibling of path and renames it
// into place, so readers never observe a partially written file. Ported
// from the teacher's atomicWriteFile (loader.go) with the AlreadyExists
// rename-race fallback from the original store's write_atomic, which
// matters on platforms (notably Windows) where os.Rename refuses to
// replace an existing destination.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newIOError(dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return newIOError(dir, err)
	}
	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return newIOError(tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return newIOError(tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		return newIOError(tempPath, err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		return newIOError(tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			if removeErr := os.Remove(path); removeErr != nil {
				return newIOError(path, removeErr)
			}
			if err := os.Rename(tempPath, path); err != nil {
				return newIOError(path, err)
			}
			removed = true
			return nil
		}
		return newIOError(path, err)
	}
	removed = true
	return nil
}
