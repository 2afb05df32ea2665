package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/pantry/internal/clock"
)

// ErrNotFound is returned when a path does not exist.
var ErrNotFound = errors.New("blob: not found")

// Storage is the byte-level contract consumed by the inventory repository
// and the image store.
type Storage interface {
	ReadText(ctx context.Context, path string) (string, error)
	WriteText(ctx context.Context, path, text string) error
	ReadBytes(ctx context.Context, path string) ([]byte, error)
	WriteBytes(ctx context.Context, path string, data []byte) error
	DeleteFile(ctx context.Context, path string) error
	BackupFile(ctx context.Context, path string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Option configures a backend.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock used to timestamp backups.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BackupName derives the sibling path a backup of path is written to.
//
// Format: "<path>.<UTC timestamp>-<12 hex>.bak", e.g.
// "inventory.json.20240101T120000Z-3f9c0a1b2c4d.bak". The suffix is the
// random tail of a UUIDv7 so two backups within one second do not collide.
func BackupName(path string, t time.Time) string {
	u := uuid.Must(uuid.NewV7()).String()
	return fmt.Sprintf("%s.%s-%s.bak", path, t.UTC().Format("20060102T150405Z"), u[24:])
}

// validatePath rejects empty and escaping paths.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("blob: empty path")
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return fmt.Errorf("blob: path %q must be relative and slash-separated", path)
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." || part == "" {
			return fmt.Errorf("blob: invalid path %q", path)
		}
	}
	return nil
}
