package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/pantry/internal/blob"
	"github.com/roach88/pantry/internal/clock"
	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

// DefaultPath is the blob path of the inventory document.
const DefaultPath = "inventory.json"

// Repository owns the inventory working set and its backing document.
type Repository struct {
	mu      sync.RWMutex
	storage blob.Storage
	path    string
	clock   clock.Clock
	ids     idgen.Source
	logger  *slog.Logger
	data    model.Inventory
}

// Option configures a Repository.
type Option func(*Repository)

// WithPath sets the blob path of the backing document.
func WithPath(path string) Option {
	return func(r *Repository) {
		r.path = path
	}
}

// WithClock sets the clock used for dates and modification stamps.
func WithClock(c clock.Clock) Option {
	return func(r *Repository) {
		r.clock = c
	}
}

// WithIDSource sets the candidate source for new record ids.
func WithIDSource(src idgen.Source) Option {
	return func(r *Repository) {
		r.ids = src
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// New creates a repository over storage with an empty working set.
// Call Load to read the existing document.
func New(storage blob.Storage, opts ...Option) *Repository {
	r := &Repository{
		storage: storage,
		path:    DefaultPath,
		clock:   clock.System{},
		ids:     idgen.RandomSource{},
		logger:  slog.Default(),
		data:    model.Empty(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the blob path of the backing document.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the backing document into the working set.
//
// Absent or blank content yields an empty inventory. Content that fails to
// parse or validate returns a *DataError and leaves the working set
// untouched; the store should be treated as unusable until the document is
// fixed or replaced by Import.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := r.storage.ReadText(ctx, r.path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if strings.TrimSpace(content) == "" {
		r.data = model.Empty()
		r.logger.Info("no existing document, initialized empty inventory", "path", r.path)
		return nil
	}

	inv, err := parseAndValidate(content)
	if err != nil {
		r.logger.Error("failed to load document", "path", r.path, "error", err)
		return fmt.Errorf("load: %w", err)
	}

	r.data = inv
	r.logger.Info("loaded document",
		"articles", len(inv.Articles),
		"locations", len(inv.Locations),
		"assignments", len(inv.Assignments),
	)
	return nil
}

// save writes next as the backing document.
// Caller must hold the write lock.
func (r *Repository) save(ctx context.Context, next *model.Inventory) error {
	normalizeText(next)
	content, err := encodeDocument(*next)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := r.storage.WriteText(ctx, r.path, content); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// mutate applies fn to a clone of the working set, saves the clone, and
// swaps it in. fn returns false when it made no change, in which case
// nothing is written.
func (r *Repository) mutate(ctx context.Context, fn func(inv *model.Inventory) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.data.Clone()
	if !fn(&next) {
		return nil
	}
	if err := r.save(ctx, &next); err != nil {
		return err
	}
	r.data = next
	return nil
}

// Export returns the raw content of the backing document.
func (r *Repository) Export(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, err := r.storage.ReadText(ctx, r.path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return content, nil
}

// Backup copies the backing document to a timestamped sibling.
// Returns the backup path, or false if no copy could be made.
func (r *Repository) Backup(ctx context.Context) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, err := r.storage.BackupFile(ctx, r.path)
	if err != nil {
		r.logger.Warn("backup failed", "path", r.path, "error", err)
		return "", false
	}
	r.logger.Info("created backup", "backup", name)
	return name, true
}

// ImportResult describes a successful import.
type ImportResult struct {
	// Backup is the path the previous document was copied to.
	// Empty when there was no previous document.
	Backup      string
	Articles    int
	Locations   int
	Assignments int
}

// Import replaces the document with content.
//
// The content is parsed and validated before anything is touched. On
// failure the document and working set are left exactly as they were. On
// success the current document is backed up, overwritten with content
// verbatim, and the parsed inventory becomes the working set.
//
// A backup failure other than an absent document aborts the import so
// existing data is never overwritten without a copy.
func (r *Repository) Import(ctx context.Context, content string) (ImportResult, error) {
	inv, err := parseAndValidate(content)
	if err != nil {
		r.logger.Error("import validation failed", "error", err)
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	r.logger.Info("import validation successful",
		"articles", len(inv.Articles),
		"locations", len(inv.Locations),
		"assignments", len(inv.Assignments),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	result := ImportResult{
		Articles:    len(inv.Articles),
		Locations:   len(inv.Locations),
		Assignments: len(inv.Assignments),
	}

	name, err := r.storage.BackupFile(ctx, r.path)
	switch {
	case err == nil:
		result.Backup = name
		r.logger.Info("created backup before import", "backup", name)
	case errors.Is(err, blob.ErrNotFound):
		r.logger.Info("no existing document to back up", "path", r.path)
	default:
		return ImportResult{}, fmt.Errorf("import: backup: %w", err)
	}

	if err := r.storage.WriteText(ctx, r.path, content); err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}

	r.data = inv
	r.logger.Info("import completed successfully")
	return result, nil
}

// PurgeResult counts the records removed by Purge.
type PurgeResult struct {
	Articles    int
	Locations   int
	Assignments int

	// ArticleImages and LocationImages map each purged owner to its image
	// ids so the caller can drop the image blobs.
	ArticleImages  map[uint32][]uint32
	LocationImages map[uint32][]uint32
}

// Total returns the number of records removed.
func (p PurgeResult) Total() int {
	return p.Articles + p.Locations + p.Assignments
}

// Purge physically removes tombstoned records.
// Assignments referencing a purged article or location are removed too so
// the document keeps validating.
func (r *Repository) Purge(ctx context.Context) (PurgeResult, error) {
	var result PurgeResult
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		result = PurgeResult{
			ArticleImages:  map[uint32][]uint32{},
			LocationImages: map[uint32][]uint32{},
		}

		articles := inv.Articles[:0]
		kept := make(idgen.Set, len(inv.Articles))
		for _, a := range inv.Articles {
			if a.Deleted {
				result.Articles++
				if len(a.ImageIDs) > 0 {
					result.ArticleImages[a.ID] = a.ImageIDs
				}
				continue
			}
			kept[a.ID] = struct{}{}
			articles = append(articles, a)
		}
		inv.Articles = articles

		locations := inv.Locations[:0]
		keptLocations := make(idgen.Set, len(inv.Locations))
		for _, l := range inv.Locations {
			if l.Deleted {
				result.Locations++
				if len(l.ImageIDs) > 0 {
					result.LocationImages[l.ID] = l.ImageIDs
				}
				continue
			}
			keptLocations[l.ID] = struct{}{}
			locations = append(locations, l)
		}
		inv.Locations = locations

		assignments := inv.Assignments[:0]
		for _, as := range inv.Assignments {
			if as.Deleted || !kept.Has(as.ArticleID) || !keptLocations.Has(as.LocationID) {
				result.Assignments++
				continue
			}
			assignments = append(assignments, as)
		}
		inv.Assignments = assignments

		return result.Total() > 0
	})
	if err != nil {
		return PurgeResult{}, err
	}
	r.logger.Info("purged tombstones",
		"articles", result.Articles,
		"locations", result.Locations,
		"assignments", result.Assignments,
	)
	return result, nil
}

// now returns the current instant as a modification stamp.
func (r *Repository) now() string {
	return model.FormatTimestamp(r.clock.Now())
}
