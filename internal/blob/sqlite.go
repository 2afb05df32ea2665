package blob

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/pantry/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// sqliteParams are the go-sqlite3 DSN options every connection opens with.
const sqliteParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// SQLite stores each path as a row in a single SQLite table.
// Uses WAL mode so readers do not block the single writer.
type SQLite struct {
	db   *sql.DB
	opts options
}

var _ Storage = (*SQLite)(nil)

// OpenSQLite opens the blob database at path, creating the table on first
// use.
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?"+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("open blob database: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create blob table in %s: %w", path, err)
	}
	return &SQLite{db: db, opts: buildOptions(opts)}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ReadText(ctx context.Context, path string) (string, error) {
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (s *SQLite) WriteText(ctx context.Context, path, text string) error {
	return s.WriteBytes(ctx, path, []byte(text))
}

func (s *SQLite) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (s *SQLite) WriteBytes(ctx context.Context, path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (path, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, path, data, model.FormatTimestamp(s.opts.clock.Now()))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *SQLite) DeleteFile(ctx context.Context, path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// BackupFile copies the row inside the database in a single statement.
func (s *SQLite) BackupFile(ctx context.Context, path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	now := s.opts.clock.Now()
	name := BackupName(path, now)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (path, data, updated_at)
		SELECT ?, data, ? FROM blobs WHERE path = ?
	`, name, model.FormatTimestamp(now), path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("backup %s: rows affected: %w", path, err)
	}
	if n == 0 {
		return "", fmt.Errorf("backup %s: %w", path, ErrNotFound)
	}
	return name, nil
}

func (s *SQLite) List(ctx context.Context, prefix string) ([]string, error) {
	// substr keeps LIKE wildcards in prefix literal
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM blobs
		WHERE substr(path, 1, ?) = ?
		ORDER BY path ASC COLLATE BINARY
	`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("list %q: scan: %w", prefix, err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return paths, nil
}

// journalMode reports the journal mode of the open connection.
func (s *SQLite) journalMode() (string, error) {
	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return "", err
	}
	return mode, nil
}
