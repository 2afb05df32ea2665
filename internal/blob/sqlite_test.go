package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	mode, err := s.journalMode()
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteText(ctx, "inventory.json", "persisted"))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	text, err := s2.ReadText(ctx, "inventory.json")
	require.NoError(t, err)
	assert.Equal(t, "persisted", text)
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/blobs.db")
	assert.Error(t, err)
}

func TestSQLite_CloseNilDB(t *testing.T) {
	s := &SQLite{}
	assert.NoError(t, s.Close())
}

func TestSQLite_ListTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteBytes(ctx, "a_b/1", []byte{1}))
	require.NoError(t, s.WriteBytes(ctx, "axb/1", []byte{2}))

	paths, err := s.List(ctx, "a_b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b/1"}, paths)
}
