// Package consolidate reshapes batches of an article at a location.
//
// The functions operate on an in-memory assignment list and never touch
// storage. Callers persist the result with
// inventory.Repository.SetLocationAssignments or SetArticleAssignments.
// Input slices are never modified.
package consolidate

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

var (
	// ErrNotFound is returned when the list holds no assignment with the id.
	ErrNotFound = errors.New("assignment not found")

	// ErrNotSplittable is returned when splitting a batch of one or less,
	// or of more than MaxSplit units.
	ErrNotSplittable = errors.New("assignment amount cannot be split")

	// ErrAmountOverflow is returned when merged amounts exceed a uint32.
	ErrAmountOverflow = errors.New("merged amount overflows")
)

// MaxSplit is the largest batch Split breaks into single units.
const MaxSplit = 1000

// Key is the grouping key under which batches are considered duplicates.
// Two assignments with equal keys may be merged.
type Key struct {
	ArticleID      uint32
	LocationID     uint32
	AddedDate      string
	ExpirationDate string
	ConsumedDate   string
}

// KeyOf returns the grouping key of a.
func KeyOf(a model.Assignment) Key {
	return Key{
		ArticleID:      a.ArticleID,
		LocationID:     a.LocationID,
		AddedDate:      a.AddedDate,
		ExpirationDate: a.ExpirationDate,
		ConsumedDate:   a.ConsumedDate,
	}
}

// Consume returns a copy of a marked as consumed on today.
// The record is kept so it still counts in statistics.
func Consume(a model.Assignment, today time.Time) model.Assignment {
	a.ConsumedDate = model.FormatDate(today)
	return a
}

// Split replaces the assignment with id by amount single-unit copies.
//
// Every copy gets a fresh id that is absent from list, from taken, and from
// its siblings. taken is usually inventory.Repository.AssignmentIDs so the
// new ids are unique across the whole document; it may be nil. The copies
// take the original's position in the returned list. Batches of more than
// MaxSplit units are refused.
func Split(list []model.Assignment, id uint32, taken idgen.Set, src idgen.Source) ([]model.Assignment, error) {
	idx := indexOf(list, id)
	if idx == -1 {
		return nil, fmt.Errorf("split %d: %w", id, ErrNotFound)
	}
	orig := list[idx]
	if orig.Amount <= 1 || orig.Amount > MaxSplit {
		return nil, fmt.Errorf("split %d (amount %d, want 2..%d): %w", id, orig.Amount, MaxSplit, ErrNotSplittable)
	}

	used := make(idgen.Set, len(list)+len(taken))
	for k := range taken {
		used[k] = struct{}{}
	}
	for _, a := range list {
		used[a.ID] = struct{}{}
	}

	parts := make([]model.Assignment, 0, orig.Amount)
	for _, newID := range idgen.UniqueN(src, used, int(orig.Amount)) {
		part := orig
		part.ID = newID
		part.Amount = 1
		parts = append(parts, part)
	}

	out := make([]model.Assignment, 0, len(list)-1+len(parts))
	out = append(out, list[:idx]...)
	out = append(out, parts...)
	out = append(out, list[idx+1:]...)
	return out, nil
}

// Merge folds every assignment sharing the key of the one with id into a
// single record. The merged record keeps the target's fields with the
// summed amount and takes the position of the first matched record.
//
// A target without duplicates leaves the list unchanged; the returned
// slice is then a copy of list. A sum that does not fit a uint32 fails
// with ErrAmountOverflow.
func Merge(list []model.Assignment, id uint32) ([]model.Assignment, error) {
	idx := indexOf(list, id)
	if idx == -1 {
		return nil, fmt.Errorf("merge %d: %w", id, ErrNotFound)
	}
	target := list[idx]
	key := KeyOf(target)

	matches := 0
	var total uint64
	for _, a := range list {
		if KeyOf(a) == key {
			matches++
			total += uint64(a.Amount)
		}
	}
	if matches < 2 {
		return slices.Clone(list), nil
	}
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("merge %d (total %d): %w", id, total, ErrAmountOverflow)
	}

	merged := target
	merged.Amount = uint32(total)

	out := make([]model.Assignment, 0, len(list)-matches+1)
	placed := false
	for _, a := range list {
		if KeyOf(a) != key {
			out = append(out, a)
			continue
		}
		if !placed {
			out = append(out, merged)
			placed = true
		}
	}
	return out, nil
}

// CanMerge reports whether a has at least one duplicate in list.
// a is expected to be an element of list.
func CanMerge(list []model.Assignment, a model.Assignment) bool {
	key := KeyOf(a)
	n := 0
	for _, other := range list {
		if KeyOf(other) == key {
			n++
		}
	}
	return n > 1
}

func indexOf(list []model.Assignment, id uint32) int {
	return slices.IndexFunc(list, func(a model.Assignment) bool { return a.ID == id })
}
