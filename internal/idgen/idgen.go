// Package idgen generates record ids that do not collide with ids already
// present in a collection.
//
// Ids are random uint32 values. A creation call takes one snapshot of the
// ids in use (a Set), draws from a Source until it finds a free value, and
// falls back to a linear scan after MaxAttempts draws. Collisions therefore
// never surface to callers.
package idgen

import (
	"math"
	"math/rand/v2"
	"sync"
)

// MaxAttempts bounds the number of random draws before Unique scans for a
// free id.
const MaxAttempts = 64

// Source produces candidate ids.
// Implemented by RandomSource (production) and FixedSource (tests).
type Source interface {
	Uint32() uint32
}

// RandomSource draws uniformly distributed ids.
//
// Thread-safety: RandomSource is stateless and safe for concurrent use.
type RandomSource struct{}

// Uint32 returns a random candidate id.
func (RandomSource) Uint32() uint32 {
	return rand.Uint32()
}

// FixedSource returns predetermined candidates in order.
//
// Thread-safety: FixedSource is safe for concurrent use via internal mutex.
type FixedSource struct {
	mu     sync.Mutex
	values []uint32
	idx    int
}

// NewFixedSource creates a source that returns values in order.
//
// Example:
//
//	src := NewFixedSource(7, 7, 8)
//	Unique(src, Set{7: {}}) // 8
func NewFixedSource(values ...uint32) *FixedSource {
	return &FixedSource{values: values}
}

// Uint32 returns the next predetermined candidate.
//
// Panics if all values have been consumed, which means the test drew more
// ids than it configured.
func (s *FixedSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.values) {
		panic("FixedSource: all values exhausted")
	}
	v := s.values[s.idx]
	s.idx++
	return v
}

// SequenceSource returns 1, 2, 3, ... so that a run of creations yields
// predictable ids.
//
// Thread-safety: SequenceSource is safe for concurrent use via internal mutex.
type SequenceSource struct {
	mu   sync.Mutex
	next uint32
}

// Uint32 returns the next value of the sequence.
func (s *SequenceSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

// Set is a snapshot of the ids in use.
type Set map[uint32]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...uint32) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is taken.
func (s Set) Has(id uint32) bool {
	_, ok := s[id]
	return ok
}

// Unique returns an id not present in taken.
// The returned id is not added to taken.
func Unique(src Source, taken Set) uint32 {
	var last uint32
	for range MaxAttempts {
		last = src.Uint32()
		if !taken.Has(last) {
			return last
		}
	}
	return scan(last+1, taken)
}

// UniqueN returns n distinct ids, none present in taken.
// Each generated id is added to taken so siblings never collide.
func UniqueN(src Source, taken Set, n int) []uint32 {
	ids := make([]uint32, 0, n)
	for range n {
		id := Unique(src, taken)
		taken[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// scan walks the id space from start and returns the first free id.
func scan(start uint32, taken Set) uint32 {
	for off := uint64(0); off <= math.MaxUint32; off++ {
		id := start + uint32(off)
		if !taken.Has(id) {
			return id
		}
	}
	panic("idgen: id space exhausted")
}
