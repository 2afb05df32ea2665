package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleClone_DoesNotShareState(t *testing.T) {
	days := uint32(7)
	a := Article{ID: 1, Name: "Milk", ImageIDs: []uint32{1, 2}, DefaultExpirationDays: &days}

	c := a.Clone()
	c.ImageIDs[0] = 99
	*c.DefaultExpirationDays = 3

	assert.Equal(t, uint32(1), a.ImageIDs[0])
	assert.Equal(t, uint32(7), a.ExpirationDays())
}

func TestInventoryClone_NilCollectionsBecomeEmpty(t *testing.T) {
	c := Inventory{}.Clone()
	assert.NotNil(t, c.Articles)
	assert.NotNil(t, c.Locations)
	assert.NotNil(t, c.Assignments)
}

func TestArticleJSON_OmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(Article{ID: 5, Name: "Rice", ImageIDs: []uint32{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"name":"Rice","imageIds":[]}`, string(data))
}

func TestAssignmentJSON_FieldNames(t *testing.T) {
	var a Assignment
	err := json.Unmarshal([]byte(`{"id":1,"articleId":2,"locationId":3,"amount":4,"addedDate":"2024-01-01","consumedDate":"2024-02-01","deleted":true}`), &a)
	require.NoError(t, err)
	assert.Equal(t, Assignment{ID: 1, ArticleID: 2, LocationID: 3, Amount: 4, AddedDate: "2024-01-01", ConsumedDate: "2024-02-01", Deleted: true}, a)
	assert.True(t, a.Consumed())
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		days uint32
		want string
	}{
		{"2024-01-01", 7, "2024-01-08"},
		{"2024-02-27", 3, "2024-03-01"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-05-05", 0, "2024-05-05"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.days)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "AddDays(%s, %d)", tt.date, tt.days)
	}

	_, err := AddDays("not-a-date", 1)
	assert.Error(t, err)
}

func TestFormatTimestamp_UsesUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 1, 1, 30, 0, 0, loc)
	assert.Equal(t, "2024-01-01T00:30:00Z", FormatTimestamp(ts))
	assert.Equal(t, "2024-01-01", FormatDate(ts))
}
