package inventory

import (
	"context"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

// Assignments returns every live assignment in document order.
func (r *Repository) Assignments() []model.Assignment {
	return r.filterAssignments(func(model.Assignment) bool { return true })
}

// LocationAssignments returns the live assignments at a location.
func (r *Repository) LocationAssignments(locationID uint32) []model.Assignment {
	return r.filterAssignments(func(as model.Assignment) bool { return as.LocationID == locationID })
}

// ArticleAssignments returns the live assignments of an article.
func (r *Repository) ArticleAssignments(articleID uint32) []model.Assignment {
	return r.filterAssignments(func(as model.Assignment) bool { return as.ArticleID == articleID })
}

func (r *Repository) filterAssignments(keep func(model.Assignment) bool) []model.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Assignment, 0)
	for _, as := range r.data.Assignments {
		if !as.Deleted && keep(as) {
			out = append(out, as)
		}
	}
	return out
}

// AssignmentIDs returns a snapshot of every assignment id in use,
// tombstones included. Consolidation uses it to keep split ids unique
// across the whole document.
func (r *Repository) AssignmentIDs() idgen.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	taken := make(idgen.Set, len(r.data.Assignments))
	for _, as := range r.data.Assignments {
		taken[as.ID] = struct{}{}
	}
	return taken
}

// NewAssignment builds an unsaved assignment of one unit added today.
// When the article has a default shelf life the expiration date is set to
// today plus that many days. Pass the result to SetLocationAssignments or
// SetArticleAssignments to persist it.
func (r *Repository) NewAssignment(articleID, locationID uint32) model.Assignment {
	taken := r.AssignmentIDs()
	id := idgen.Unique(r.ids, taken)

	now := r.clock.Now()
	today := model.FormatDate(now)
	as := model.Assignment{
		ID:           id,
		ArticleID:    articleID,
		LocationID:   locationID,
		Amount:       1,
		AddedDate:    today,
		LastModified: model.FormatTimestamp(now),
	}

	if article, ok := r.Article(articleID); ok {
		if days := article.ExpirationDays(); days > 0 {
			if exp, err := model.AddDays(today, days); err == nil {
				as.ExpirationDate = exp
			}
		}
	}

	r.logger.Info("created new assignment", "id", as.ID, "article_id", articleID, "location_id", locationID)
	return as
}

// SetLocationAssignments replaces every assignment at locationID with list.
//
// This is a whole-for-key replace of the live rows: existing live
// assignments for the location are removed and each element of list with a
// nonzero amount is inserted with a fresh lastModified stamp. Omitting a
// row deletes it. Tombstones at the location stay until Purge unless list
// reuses their id. An existing assignment elsewhere that shares an id with
// an element of list is replaced as well, keeping ids unique.
func (r *Repository) SetLocationAssignments(ctx context.Context, locationID uint32, list []model.Assignment) error {
	return r.replaceAssignments(ctx, "location_id", locationID, list, func(as model.Assignment) bool {
		return as.LocationID == locationID
	})
}

// SetArticleAssignments replaces every assignment of articleID with list.
// See SetLocationAssignments.
func (r *Repository) SetArticleAssignments(ctx context.Context, articleID uint32, list []model.Assignment) error {
	return r.replaceAssignments(ctx, "article_id", articleID, list, func(as model.Assignment) bool {
		return as.ArticleID == articleID
	})
}

func (r *Repository) replaceAssignments(
	ctx context.Context,
	keyName string,
	key uint32,
	list []model.Assignment,
	matches func(model.Assignment) bool,
) error {
	incoming := make(idgen.Set, len(list))
	for _, as := range list {
		if as.Amount > 0 {
			incoming[as.ID] = struct{}{}
		}
	}

	removed, added := 0, 0
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		kept := inv.Assignments[:0]
		for _, as := range inv.Assignments {
			if incoming.Has(as.ID) || (matches(as) && !as.Deleted) {
				removed++
				continue
			}
			kept = append(kept, as)
		}
		inv.Assignments = kept

		stamp := r.now()
		for _, as := range list {
			if as.Amount == 0 {
				continue
			}
			if !matches(as) {
				r.logger.Warn("assignment does not belong to replaced key",
					"id", as.ID, keyName, key,
					"article_id", as.ArticleID, "location_id", as.LocationID)
			}
			as.LastModified = stamp
			inv.Assignments = append(inv.Assignments, as)
			added++
		}
		return true
	})
	if err != nil {
		return err
	}
	r.logger.Info("replaced assignments", keyName, key, "removed", removed, "added", added)
	return nil
}
