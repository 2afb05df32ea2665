package blob

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Storage.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	opts  options
}

var _ Storage = (*Memory)(nil)

// NewMemory creates an empty in-memory storage.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		files: make(map[string][]byte),
		opts:  buildOptions(opts),
	}
}

func (m *Memory) ReadText(ctx context.Context, path string) (string, error) {
	data, err := m.ReadBytes(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (m *Memory) WriteText(ctx context.Context, path, text string) error {
	return m.WriteBytes(ctx, path, []byte(text))
}

func (m *Memory) ReadBytes(_ context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	return slices.Clone(data), nil
}

func (m *Memory) WriteBytes(_ context.Context, path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = slices.Clone(data)
	return nil
}

func (m *Memory) DeleteFile(_ context.Context, path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, path)
	return nil
}

func (m *Memory) BackupFile(_ context.Context, path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("backup %s: %w", path, ErrNotFound)
	}
	name := BackupName(path, m.opts.clock.Now())
	m.files[name] = slices.Clone(data)
	return name, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths, nil
}
