package idgen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnique_SkipsTakenIDs(t *testing.T) {
	src := NewFixedSource(1, 2, 3)
	id := Unique(src, NewSet(1, 2))
	assert.Equal(t, uint32(3), id)
}

func TestUnique_FallsBackToScanAfterMaxAttempts(t *testing.T) {
	values := make([]uint32, MaxAttempts)
	for i := range values {
		values[i] = 10
	}
	src := NewFixedSource(values...)

	id := Unique(src, NewSet(10, 11, 12))
	assert.Equal(t, uint32(13), id)
}

func TestUnique_ScanWrapsAround(t *testing.T) {
	values := make([]uint32, MaxAttempts)
	for i := range values {
		values[i] = math.MaxUint32
	}
	src := NewFixedSource(values...)

	id := Unique(src, NewSet(math.MaxUint32, 0))
	assert.Equal(t, uint32(1), id)
}

func TestUniqueN_SiblingsAreDistinct(t *testing.T) {
	src := NewFixedSource(5, 5, 6, 6, 7)
	taken := NewSet(7)

	ids := UniqueN(src, taken, 2)
	assert.Equal(t, []uint32{5, 6}, ids)
	assert.True(t, taken.Has(5))
	assert.True(t, taken.Has(6))
}

func TestRandomSource_NeverReturnsTakenID(t *testing.T) {
	taken := NewSet()
	for range 1000 {
		id := Unique(RandomSource{}, taken)
		require.False(t, taken.Has(id))
		taken[id] = struct{}{}
	}
	assert.Len(t, taken, 1000)
}

func TestFixedSource_PanicsWhenExhausted(t *testing.T) {
	src := NewFixedSource(1)
	src.Uint32()
	assert.Panics(t, func() { src.Uint32() })
}

func TestSequenceSource_SkipsTakenIDs(t *testing.T) {
	src := &SequenceSource{}
	assert.Equal(t, []uint32{1, 3}, UniqueN(src, NewSet(2), 2))
	assert.Equal(t, uint32(4), src.Uint32())
}
