// Package files stores one encoded document per file in a directory.
package files

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Store is a directory of <docid><ext> files.
type Store struct {
	dir string
	ext string
}

// Open opens an existing directory.
func Open(dir, ext string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapIO("open", dir, err)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("directory", abs)
	}
	if err != nil {
		return nil, errors.WrapIO("open", abs, err)
	}
	if !info.IsDir() {
		return nil, errors.NewIOError("open", abs, errors.New("not a directory"))
	}
	return &Store{dir: abs, ext: ext}, nil
}

// OpenOrCreate opens dir, creating it and its parents when absent.
func OpenOrCreate(dir, ext string) (*Store, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return Open(dir, ext)
}

// Location returns the absolute directory path.
func (s *Store) Location() string {
	return s.dir
}

// List returns the stored doc ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.WrapIO("list", s.dir, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext))
	}
	slices.Sort(ids)
	return ids, nil
}

// Get returns the raw document, or a NotFoundError.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is confined to the store directory
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("document", id)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// Put replaces the document. The file is written to a temporary name and
// renamed into place so readers never see a partial document.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(id)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) path(id string) (string, error) {
	if err := ValidateDocID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+s.ext), nil
}

// ValidateDocID rejects ids that cannot safely be used as a file name.
func ValidateDocID(id string) error {
	switch {
	case id == "":
		return errors.NewValidationError("doc_id", id, "cannot be empty")
	case strings.ContainsAny(id, `/\`) || strings.Contains(id, ".."):
		return errors.NewValidationError("doc_id", id, "cannot contain path separators or '..'")
	case strings.HasPrefix(id, "."):
		return errors.NewValidationError("doc_id", id, "cannot start with '.'")
	}
	return nil
}
