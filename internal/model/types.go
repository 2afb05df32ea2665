package model

import "slices"

// Article is a kind of item kept in the household.
type Article struct {
	ID                    uint32   `json:"id"`
	Name                  string   `json:"name"`
	Brand                 string   `json:"brand,omitempty"`
	Abbreviation          string   `json:"abbreviation,omitempty"`
	MinimumAmount         uint32   `json:"minimumAmount,omitempty"`
	DefaultExpirationDays *uint32  `json:"defaultExpirationDays,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
	Modified              string   `json:"modified,omitempty"`
	Added                 string   `json:"added,omitempty"`
	ImageIDs              []uint32 `json:"imageIds"`
	Deleted               bool     `json:"deleted,omitempty"`
}

// Location is a place where articles are stored.
type Location struct {
	ID       uint32   `json:"id"`
	Name     string   `json:"name"`
	Notes    string   `json:"notes,omitempty"`
	ImageIDs []uint32 `json:"imageIds"`
	Deleted  bool     `json:"deleted,omitempty"`
}

// Assignment is a batch of an article present at a location.
// ConsumedDate marks the batch as used up; the record is kept for statistics.
type Assignment struct {
	ID             uint32 `json:"id"`
	ArticleID      uint32 `json:"articleId"`
	LocationID     uint32 `json:"locationId"`
	Amount         uint32 `json:"amount"`
	AddedDate      string `json:"addedDate,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
	ConsumedDate   string `json:"consumedDate,omitempty"`
	LastModified   string `json:"lastModified,omitempty"`
	Deleted        bool   `json:"deleted,omitempty"`
}

// Inventory is the aggregate persisted as one document.
type Inventory struct {
	Articles    []Article    `json:"articles"`
	Locations   []Location   `json:"locations"`
	Assignments []Assignment `json:"assignments"`
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	a.ImageIDs = cloneIDs(a.ImageIDs)
	if a.DefaultExpirationDays != nil {
		days := *a.DefaultExpirationDays
		a.DefaultExpirationDays = &days
	}
	return a
}

// ExpirationDays returns the default shelf life in days, 0 when unset.
func (a Article) ExpirationDays() uint32 {
	if a.DefaultExpirationDays == nil {
		return 0
	}
	return *a.DefaultExpirationDays
}

// Clone returns a deep copy of the location.
func (l Location) Clone() Location {
	l.ImageIDs = cloneIDs(l.ImageIDs)
	return l
}

// Consumed reports whether the batch has been used up.
func (a Assignment) Consumed() bool {
	return a.ConsumedDate != ""
}

// Clone returns a deep copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := Inventory{
		Articles:    make([]Article, len(inv.Articles)),
		Locations:   make([]Location, len(inv.Locations)),
		Assignments: slices.Clone(inv.Assignments),
	}
	for i, a := range inv.Articles {
		out.Articles[i] = a.Clone()
	}
	for i, l := range inv.Locations {
		out.Locations[i] = l.Clone()
	}
	if out.Assignments == nil {
		out.Assignments = []Assignment{}
	}
	return out
}

// Empty returns an inventory with non-nil, empty collections.
func Empty() Inventory {
	return Inventory{
		Articles:    []Article{},
		Locations:   []Location{},
		Assignments: []Assignment{},
	}
}

// Normalize replaces nil collections with empty ones so the document
// always serializes as arrays rather than null.
func (inv *Inventory) Normalize() {
	if inv.Articles == nil {
		inv.Articles = []Article{}
	}
	if inv.Locations == nil {
		inv.Locations = []Location{}
	}
	if inv.Assignments == nil {
		inv.Assignments = []Assignment{}
	}
	for i := range inv.Articles {
		if inv.Articles[i].ImageIDs == nil {
			inv.Articles[i].ImageIDs = []uint32{}
		}
	}
	for i := range inv.Locations {
		if inv.Locations[i].ImageIDs == nil {
			inv.Locations[i].ImageIDs = []uint32{}
		}
	}
}

func cloneIDs(ids []uint32) []uint32 {
	if ids == nil {
		return []uint32{}
	}
	return slices.Clone(ids)
}
