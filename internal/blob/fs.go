package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FS stores each path as a file below a root directory.
//
// Writes go to a temporary file in the target directory and are renamed
// into place, so a crash never leaves a half-written document.
type FS struct {
	root string
	opts options
}

var _ Storage = (*FS)(nil)

// NewFS creates a filesystem storage rooted at root.
// The directory is created if it does not exist.
func NewFS(root string, opts ...Option) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FS{root: root, opts: buildOptions(opts)}, nil
}

// Root returns the storage root directory.
func (s *FS) Root() string {
	return s.root
}

func (s *FS) resolve(path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(path)), nil
}

func (s *FS) ReadText(ctx context.Context, path string) (string, error) {
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (s *FS) WriteText(ctx context.Context, path, text string) error {
	return s.WriteBytes(ctx, path, []byte(text))
}

func (s *FS) ReadBytes(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *FS) WriteBytes(_ context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return writeFileAtomic(full, data)
}

func (s *FS) DeleteFile(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *FS) BackupFile(ctx context.Context, path string) (string, error) {
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	name := BackupName(path, s.opts.clock.Now())
	if err := s.WriteBytes(ctx, name, data); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	return name, nil
}

func (s *FS) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func writeFileAtomic(full string, data []byte) error {
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
