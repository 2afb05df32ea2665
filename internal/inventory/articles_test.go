package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pantry/internal/model"
)

func TestNewArticle_SkipsExistingIDsIncludingTombstones(t *testing.T) {
	ctx := context.Background()
	r, _, _ := createTestRepo(t, fixedIDs(1, 2, 1, 2, 3))

	first := r.NewArticle("A")
	require.NoError(t, r.PutArticle(ctx, first))
	second := r.NewArticle("B")
	require.NoError(t, r.PutArticle(ctx, second))
	require.NoError(t, r.DeleteArticle(ctx, second.ID))

	third := r.NewArticle("C")
	assert.Equal(t, uint32(1), first.ID)
	assert.Equal(t, uint32(2), second.ID)
	assert.Equal(t, uint32(3), third.ID, "tombstoned id 2 must not be reused")
}

func TestNewArticle_RandomIDsNeverCollide(t *testing.T) {
	ctx := context.Background()
	r, _, _ := createTestRepo(t)

	seen := map[uint32]bool{}
	for range 100 {
		a := r.NewArticle("Article #%1$d")
		require.False(t, seen[a.ID])
		seen[a.ID] = true
		require.NoError(t, r.PutArticle(ctx, a))
	}
}

func TestNewArticle_FillsTemplateAndStamps(t *testing.T) {
	r, _, _ := createTestRepo(t, fixedIDs(42))

	a := r.NewArticle("Article #%1$d")
	assert.Equal(t, "Article #42", a.Name)
	assert.Equal(t, "2024-01-01T00:00:00Z", a.Added)
	assert.Equal(t, "2024-01-01T00:00:00Z", a.Modified)
	assert.NotNil(t, a.ImageIDs)

	_, ok := r.Article(42)
	assert.False(t, ok, "NewArticle must not persist")
}

func TestPutArticle_Upsert(t *testing.T) {
	ctx := context.Background()
	r, storage, _ := createTestRepo(t)

	mustAddArticle(t, r, model.Article{ID: 1, Name: "Tea"})
	mustAddArticle(t, r, model.Article{ID: 2, Name: "Coffee"})
	require.NoError(t, r.PutArticle(ctx, model.Article{ID: 1, Name: "Green Tea", ImageIDs: []uint32{}}))

	articles := r.Articles()
	require.Len(t, articles, 2)
	assert.Equal(t, "Green Tea", articles[0].Name, "upsert keeps position")
	assert.Equal(t, "Coffee", articles[1].Name)

	writes, _ := storage.counts()
	assert.Equal(t, 3, writes, "every mutation is durable")
}

func TestPutArticle_DoesNotValidate(t *testing.T) {
	r, _, _ := createTestRepo(t)
	mustAddArticle(t, r, model.Article{ID: 1, Name: ""})

	_, ok := r.Article(1)
	assert.True(t, ok)
}

func TestArticle_ReturnsCopy(t *testing.T) {
	r, _, _ := createTestRepo(t)
	mustAddArticle(t, r, model.Article{ID: 1, Name: "Tea", ImageIDs: []uint32{5}})

	a, ok := r.Article(1)
	require.True(t, ok)
	a.ImageIDs[0] = 99
	a.Name = "changed"

	again, _ := r.Article(1)
	assert.Equal(t, "Tea", again.Name)
	assert.Equal(t, []uint32{5}, again.ImageIDs)
}

func TestDeleteArticle_CascadesWithSharedStamp(t *testing.T) {
	ctx := context.Background()
	r, _, clk := createTestRepo(t)
	mustAddArticle(t, r, model.Article{ID: 1, Name: "Milk"})
	mustAddArticle(t, r, model.Article{ID: 2, Name: "Eggs"})
	mustAddLocation(t, r, model.Location{ID: 10, Name: "Fridge"})
	mustAddLocation(t, r, model.Location{ID: 11, Name: "Door"})
	require.NoError(t, r.SetLocationAssignments(ctx, 10, []model.Assignment{
		{ID: 100, ArticleID: 1, LocationID: 10, Amount: 2},
		{ID: 101, ArticleID: 2, LocationID: 10, Amount: 1},
	}))
	require.NoError(t, r.SetLocationAssignments(ctx, 11, []model.Assignment{
		{ID: 102, ArticleID: 1, LocationID: 11, Amount: 1},
	}))

	clk.Advance(90 * time.Minute)
	require.NoError(t, r.DeleteArticle(ctx, 1))

	_, ok := r.Article(1)
	assert.False(t, ok)
	assert.Empty(t, r.ArticleAssignments(1))
	assert.Len(t, r.ArticleAssignments(2), 1, "other article untouched")

	// The document keeps the tombstones.
	r.mu.RLock()
	doc := r.data.Clone()
	r.mu.RUnlock()

	require.Len(t, doc.Articles, 2)
	assert.True(t, doc.Articles[0].Deleted)
	assert.Equal(t, "2024-01-01T01:30:00Z", doc.Articles[0].Modified)

	stamps := map[string]bool{}
	for _, as := range doc.Assignments {
		if as.ArticleID == 1 {
			assert.True(t, as.Deleted)
			stamps[as.LastModified] = true
		}
	}
	assert.Equal(t, map[string]bool{"2024-01-01T01:30:00Z": true}, stamps)
}

func TestDeleteArticle_MissingIsNoop(t *testing.T) {
	r, storage, _ := createTestRepo(t)
	require.NoError(t, r.DeleteArticle(context.Background(), 404))

	writes, _ := storage.counts()
	assert.Equal(t, 0, writes)
}

func TestDeleteLocation_Cascades(t *testing.T) {
	ctx := context.Background()
	r, _, _ := createTestRepo(t)
	mustAddArticle(t, r, model.Article{ID: 1, Name: "Milk"})
	mustAddLocation(t, r, model.Location{ID: 10, Name: "Fridge"})
	mustAddLocation(t, r, model.Location{ID: 11, Name: "Cellar"})
	require.NoError(t, r.SetArticleAssignments(ctx, 1, []model.Assignment{
		{ID: 100, ArticleID: 1, LocationID: 10, Amount: 2},
		{ID: 101, ArticleID: 1, LocationID: 11, Amount: 4},
	}))

	require.NoError(t, r.DeleteLocation(ctx, 10))

	_, ok := r.Location(10)
	assert.False(t, ok)
	assert.Len(t, r.Locations(), 1)
	remaining := r.ArticleAssignments(1)
	require.Len(t, remaining, 1)
	assert.Equal(t, uint32(101), remaining[0].ID)
}

func TestNewLocation_FillsTemplate(t *testing.T) {
	r, _, _ := createTestRepo(t, fixedIDs(7))
	l := r.NewLocation("Shelf %1$d")
	assert.Equal(t, "Shelf 7", l.Name)
	assert.Equal(t, []uint32{}, l.ImageIDs)
}
