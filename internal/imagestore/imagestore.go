// Package imagestore persists article and location photos and serves
// bounded-size thumbnails from a lazily filled cache.
//
// Callers address images by owner kind, owner id and image id; blob paths
// are derived here and never exposed. Image ids are unique only within
// their owner.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pantry/internal/blob"
	"github.com/roach88/pantry/internal/idgen"
)

// Thumbnail box dimensions.
const (
	ThumbnailWidth  = 256
	ThumbnailHeight = 256
)

// OwnerKind is the kind of record an image belongs to.
type OwnerKind string

const (
	Article  OwnerKind = "article"
	Location OwnerKind = "location"
)

// ParseOwnerKind converts a command-line value to an OwnerKind.
func ParseOwnerKind(s string) (OwnerKind, error) {
	switch k := OwnerKind(s); k {
	case Article, Location:
		return k, nil
	}
	return "", fmt.Errorf("unknown owner kind %q (want article or location)", s)
}

// ImagePath returns the blob path of a full-resolution image.
func ImagePath(kind OwnerKind, ownerID, imageID uint32) string {
	return fmt.Sprintf("images/%s/%d_%d.jpg", kind, ownerID, imageID)
}

// ThumbnailPath returns the blob path of a cached thumbnail.
func ThumbnailPath(kind OwnerKind, ownerID, imageID uint32) string {
	return fmt.Sprintf("images/%s/thumbnails/%d_%d_%dx%d.jpg",
		kind, ownerID, imageID, ThumbnailWidth, ThumbnailHeight)
}

// Store reads and writes images through a blob.Storage.
type Store struct {
	storage blob.Storage
	resizer Resizer
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithResizer replaces the default BoxResizer.
func WithResizer(r Resizer) Option {
	return func(s *Store) {
		s.resizer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store over storage.
func New(storage blob.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		resizer: NewBoxResizer(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the full-resolution bytes of an image.
// The thumbnail cache is not touched; thumbnails are generated on first
// request.
func (s *Store) Save(ctx context.Context, kind OwnerKind, ownerID, imageID uint32, data []byte) error {
	if err := s.storage.WriteBytes(ctx, ImagePath(kind, ownerID, imageID), data); err != nil {
		return fmt.Errorf("save image %s/%d/%d: %w", kind, ownerID, imageID, err)
	}
	s.logger.Debug("saved image", "kind", kind, "owner_id", ownerID, "image_id", imageID, "bytes", len(data))
	return nil
}

// Get returns the full-resolution bytes of an image.
// An absent image returns (nil, false, nil).
func (s *Store) Get(ctx context.Context, kind OwnerKind, ownerID, imageID uint32) ([]byte, bool, error) {
	data, err := s.storage.ReadBytes(ctx, ImagePath(kind, ownerID, imageID))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get image %s/%d/%d: %w", kind, ownerID, imageID, err)
	}
	return data, true, nil
}

// Thumbnail returns an image scaled to fit the thumbnail box.
//
// A cached thumbnail is returned as is. Otherwise the full image is
// resized, written to the cache, and returned. A missing image or a failed
// resize yields (nil, false); failures are logged, never returned.
func (s *Store) Thumbnail(ctx context.Context, kind OwnerKind, ownerID, imageID uint32) ([]byte, bool) {
	log := s.logger.With("kind", kind, "owner_id", ownerID, "image_id", imageID)
	thumbPath := ThumbnailPath(kind, ownerID, imageID)

	cached, err := s.storage.ReadBytes(ctx, thumbPath)
	if err == nil {
		return cached, true
	}
	if !errors.Is(err, blob.ErrNotFound) {
		log.Warn("failed to read cached thumbnail", "error", err)
	}

	full, ok, err := s.Get(ctx, kind, ownerID, imageID)
	if err != nil {
		log.Warn("failed to read image for thumbnail", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	thumb, err := s.resizer.Resize(full, ThumbnailWidth, ThumbnailHeight)
	if err != nil {
		log.Warn("failed to resize image", "error", err)
		return nil, false
	}

	if err := s.storage.WriteBytes(ctx, thumbPath, thumb); err != nil {
		log.Warn("failed to cache thumbnail", "error", err)
	}
	return thumb, true
}

// Delete removes an image and its thumbnail.
// Deleting an absent image is not an error.
func (s *Store) Delete(ctx context.Context, kind OwnerKind, ownerID, imageID uint32) error {
	for _, path := range []string{ImagePath(kind, ownerID, imageID), ThumbnailPath(kind, ownerID, imageID)} {
		if err := s.storage.DeleteFile(ctx, path); err != nil {
			return fmt.Errorf("delete image %s/%d/%d: %w", kind, ownerID, imageID, err)
		}
	}
	s.logger.Debug("deleted image", "kind", kind, "owner_id", ownerID, "image_id", imageID)
	return nil
}

// DeleteOwner removes every listed image of an owner.
func (s *Store) DeleteOwner(ctx context.Context, kind OwnerKind, ownerID uint32, imageIDs []uint32) error {
	var errs []error
	for _, id := range imageIDs {
		if err := s.Delete(ctx, kind, ownerID, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewImageID returns an image id not in existing, the owner's current
// image ids.
func NewImageID(src idgen.Source, existing []uint32) uint32 {
	return idgen.Unique(src, idgen.NewSet(existing...))
}
