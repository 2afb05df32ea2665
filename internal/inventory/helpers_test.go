package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pantry/internal/blob"
	"github.com/roach88/pantry/internal/clock"
	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

// countingStorage wraps a Storage and counts mutating calls.
type countingStorage struct {
	blob.Storage

	mu        sync.Mutex
	writes    int
	backups   int
	failWrite error
	failBack  error
}

func (c *countingStorage) WriteText(ctx context.Context, path, text string) error {
	c.mu.Lock()
	c.writes++
	fail := c.failWrite
	c.mu.Unlock()
	if fail != nil {
		return fail
	}
	return c.Storage.WriteText(ctx, path, text)
}

func (c *countingStorage) BackupFile(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	c.backups++
	fail := c.failBack
	c.mu.Unlock()
	if fail != nil {
		return "", fail
	}
	return c.Storage.BackupFile(ctx, path)
}

func (c *countingStorage) counts() (writes, backups int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes, c.backups
}

var errDiskFull = errors.New("disk full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestRepo creates a repository over in-memory storage with a clock
// frozen at 2024-01-01 and random ids.
func createTestRepo(t *testing.T, opts ...Option) (*Repository, *countingStorage, *clock.Fixed) {
	t.Helper()
	clk := clock.Date(2024, time.January, 1)
	storage := &countingStorage{Storage: blob.NewMemory(blob.WithClock(clk))}
	base := []Option{WithClock(clk), WithLogger(discardLogger())}
	r := New(storage, append(base, opts...)...)
	require.NoError(t, r.Load(context.Background()))
	return r, storage, clk
}

// seedDocument writes content as the backing document and loads it.
func seedDocument(t *testing.T, r *Repository, storage blob.Storage, content string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, storage.WriteText(ctx, r.Path(), content))
	require.NoError(t, r.Load(ctx))
}

func fixedIDs(values ...uint32) Option {
	return WithIDSource(idgen.NewFixedSource(values...))
}

func days(n uint32) *uint32 {
	return &n
}

// mustAddArticle creates and persists an article with a fixed id.
func mustAddArticle(t *testing.T, r *Repository, a model.Article) {
	t.Helper()
	if a.ImageIDs == nil {
		a.ImageIDs = []uint32{}
	}
	require.NoError(t, r.PutArticle(context.Background(), a))
}

func mustAddLocation(t *testing.T, r *Repository, l model.Location) {
	t.Helper()
	if l.ImageIDs == nil {
		l.ImageIDs = []uint32{}
	}
	require.NoError(t, r.PutLocation(context.Background(), l))
}
