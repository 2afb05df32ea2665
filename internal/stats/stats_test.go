package stats

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pantry/internal/model"
)

func history() []model.Assignment {
	return []model.Assignment{
		{ID: 1, ArticleID: 1, LocationID: 10, Amount: 3, AddedDate: "2023-11-20", ConsumedDate: "2024-01-05"},
		{ID: 2, ArticleID: 1, LocationID: 10, Amount: 2, AddedDate: "2024-01-02"},
		{ID: 3, ArticleID: 2, LocationID: 11, Amount: 5, AddedDate: "2024-03-15", ConsumedDate: "2024-03-30"},
		{ID: 4, ArticleID: 2, LocationID: 10, Amount: 1, AddedDate: "2024-12-31", ConsumedDate: "2025-01-01"},
		{ID: 5, ArticleID: 1, LocationID: 11, Amount: 4},
	}
}

func TestYears(t *testing.T) {
	assert.Equal(t, []string{"2025", "2024", "2023"}, Years(history()))
	assert.Empty(t, Years(nil))
}

func TestCompute_MonthlyGolden(t *testing.T) {
	periods, err := Compute(history(), Filter{Year: "2024"})
	require.NoError(t, err)
	require.Len(t, periods, 12)

	out, err := json.MarshalIndent(periods, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "monthly_2024", append(out, '\n'))
}

func TestCompute_Yearly(t *testing.T) {
	periods, err := Compute(history(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, []Period{
		{Period: "2023", Added: 3},
		{Period: "2024", Added: 8, Consumed: 8},
		{Period: "2025", Consumed: 1},
	}, periods)
}

func TestCompute_Filters(t *testing.T) {
	periods, err := Compute(history(), Filter{LocationID: 10})
	require.NoError(t, err)
	assert.Equal(t, []Period{
		{Period: "2023", Added: 3},
		{Period: "2024", Added: 3, Consumed: 3},
		{Period: "2025", Consumed: 1},
	}, periods)

	periods, err = Compute(history(), Filter{Year: "2024", ArticleID: 2, LocationID: 11})
	require.NoError(t, err)
	assert.Equal(t, Period{Period: "2024-03", Added: 5, Consumed: 5}, periods[2])
	for i, p := range periods {
		if i != 2 {
			assert.Zero(t, p.Added+p.Consumed, p.Period)
		}
	}
}

func TestCompute_InvalidYear(t *testing.T) {
	for _, year := range []string{"24", "20x4", "abcd", "12345"} {
		_, err := Compute(nil, Filter{Year: year})
		assert.Error(t, err, year)
	}
}

func TestCompute_EmptyYearIsSeeded(t *testing.T) {
	periods, err := Compute(nil, Filter{Year: "1999"})
	require.NoError(t, err)
	require.Len(t, periods, 12)
	assert.Equal(t, "1999-01", periods[0].Period)
	assert.Equal(t, "1999-12", periods[11].Period)
}
