package consolidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

func batch(id, amount uint32) model.Assignment {
	return model.Assignment{
		ID:             id,
		ArticleID:      1,
		LocationID:     10,
		Amount:         amount,
		AddedDate:      "2024-01-01",
		ExpirationDate: "2024-01-08",
	}
}

func ids(list []model.Assignment) []uint32 {
	out := make([]uint32, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestConsume(t *testing.T) {
	a := batch(1, 3)
	got := Consume(a, time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-05", got.ConsumedDate)
	assert.Equal(t, uint32(3), got.Amount)
	assert.Empty(t, a.ConsumedDate, "input must not change")
}

func TestSplit_ThreeIntoOnes(t *testing.T) {
	list := []model.Assignment{batch(100, 3)}

	got, err := Split(list, 100, nil, idgen.RandomSource{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := map[uint32]bool{}
	for _, a := range got {
		assert.Equal(t, uint32(1), a.Amount)
		assert.NotEqual(t, uint32(100), a.ID)
		assert.False(t, seen[a.ID], "ids must be distinct")
		seen[a.ID] = true

		assert.Equal(t, "2024-01-08", a.ExpirationDate)
		assert.Equal(t, uint32(1), a.ArticleID)
	}
	assert.Equal(t, uint32(3), list[0].Amount, "input must not change")
}

func TestSplit_AvoidsListTakenAndSiblings(t *testing.T) {
	list := []model.Assignment{batch(5, 1), batch(100, 2), batch(6, 1)}
	taken := idgen.NewSet(7)
	src := idgen.NewFixedSource(5, 7, 8, 8, 100, 9)

	got, err := Split(list, 100, taken, src)
	require.NoError(t, err)

	assert.Equal(t, []uint32{5, 8, 9, 6}, ids(got), "parts take the original's position")
	assert.False(t, taken.Has(8), "taken must not be modified")
}

func TestSplit_Errors(t *testing.T) {
	list := []model.Assignment{batch(1, 1), batch(2, 0)}

	_, err := Split(list, 1, nil, idgen.RandomSource{})
	assert.ErrorIs(t, err, ErrNotSplittable)

	_, err = Split(list, 2, nil, idgen.RandomSource{})
	assert.ErrorIs(t, err, ErrNotSplittable)

	_, err = Split(list, 3, nil, idgen.RandomSource{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSplit_RefusesHugeBatches(t *testing.T) {
	list := []model.Assignment{batch(1, MaxSplit+1), batch(2, 4_000_000_000)}

	_, err := Split(list, 1, nil, idgen.RandomSource{})
	assert.ErrorIs(t, err, ErrNotSplittable)

	_, err = Split(list, 2, nil, idgen.RandomSource{})
	assert.ErrorIs(t, err, ErrNotSplittable)
}

func TestSplit_AtLimit(t *testing.T) {
	got, err := Split([]model.Assignment{batch(1, MaxSplit)}, 1, nil, &idgen.SequenceSource{})
	require.NoError(t, err)
	assert.Len(t, got, MaxSplit)
}

func TestMerge_SumsDuplicates(t *testing.T) {
	other := batch(3, 4)
	other.ExpirationDate = "2024-02-01"
	list := []model.Assignment{batch(1, 2), other, batch(2, 5)}

	got, err := Merge(list, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, uint32(2), got[0].ID, "merged record keeps the target's id")
	assert.Equal(t, uint32(7), got[0].Amount)
	assert.Equal(t, other, got[1])
	assert.Len(t, list, 3, "input must not change")
}

func TestMerge_SingleMatchIsNoop(t *testing.T) {
	consumed := batch(2, 5)
	consumed.ConsumedDate = "2024-01-03"
	list := []model.Assignment{batch(1, 2), consumed}

	got, err := Merge(list, 1)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestMerge_Overflow(t *testing.T) {
	list := []model.Assignment{batch(1, 4_000_000_000), batch(2, 400_000_000)}

	_, err := Merge(list, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, uint32(4_000_000_000), list[0].Amount, "input must not change")
}

func TestMerge_MissingID(t *testing.T) {
	_, err := Merge([]model.Assignment{batch(1, 1)}, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanMerge(t *testing.T) {
	a, b := batch(1, 1), batch(2, 1)
	c := batch(3, 1)
	c.LocationID = 11

	list := []model.Assignment{a, b, c}
	assert.True(t, CanMerge(list, a))
	assert.False(t, CanMerge(list, c))
}
