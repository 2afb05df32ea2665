package inventory

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/pantry/internal/model"
)

// SortArticles orders articles by name using the collation rules of lang,
// ignoring case. Ties are broken by id.
func SortArticles(articles []model.Article, lang language.Tag) {
	c := collate.New(lang, collate.IgnoreCase)
	slices.SortStableFunc(articles, func(a, b model.Article) int {
		if n := c.CompareString(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortLocations orders locations by name. See SortArticles.
func SortLocations(locations []model.Location, lang language.Tag) {
	c := collate.New(lang, collate.IgnoreCase)
	slices.SortStableFunc(locations, func(a, b model.Location) int {
		if n := c.CompareString(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
