package inventory

import (
	"context"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

// Article returns the live article with id.
func (r *Repository) Article(id uint32) (model.Article, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.data.Articles {
		if a.ID == id && !a.Deleted {
			return a.Clone(), true
		}
	}
	return model.Article{}, false
}

// Articles returns every live article in document order.
func (r *Repository) Articles() []model.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Article, 0, len(r.data.Articles))
	for _, a := range r.data.Articles {
		if !a.Deleted {
			out = append(out, a.Clone())
		}
	}
	return out
}

// NewArticle builds an unsaved article with a fresh id.
// The id is unique among all articles, tombstones included. nameTemplate
// may contain IDPlaceholder. Pass the result to PutArticle to persist it.
func (r *Repository) NewArticle(nameTemplate string) model.Article {
	r.mu.RLock()
	taken := make(idgen.Set, len(r.data.Articles))
	for _, a := range r.data.Articles {
		taken[a.ID] = struct{}{}
	}
	r.mu.RUnlock()

	id := idgen.Unique(r.ids, taken)
	stamp := r.now()
	a := model.Article{
		ID:       id,
		Name:     FormatName(nameTemplate, id),
		Added:    stamp,
		Modified: stamp,
		ImageIDs: []uint32{},
	}
	r.logger.Info("created new article", "id", a.ID, "name", a.Name)
	return a
}

// PutArticle inserts the article or replaces the one with the same id.
func (r *Repository) PutArticle(ctx context.Context, article model.Article) error {
	article = article.Clone()
	updated := false
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		for i := range inv.Articles {
			if inv.Articles[i].ID == article.ID {
				inv.Articles[i] = article
				updated = true
				return true
			}
		}
		inv.Articles = append(inv.Articles, article)
		return true
	})
	if err != nil {
		return err
	}
	if updated {
		r.logger.Info("updated article", "id", article.ID, "name", article.Name)
	} else {
		r.logger.Info("added article", "id", article.ID, "name", article.Name)
	}
	return nil
}

// DeleteArticle tombstones the article and every live assignment that
// references it, stamping all of them with the same instant.
// A missing id is a no-op.
func (r *Repository) DeleteArticle(ctx context.Context, id uint32) error {
	var name string
	found := false
	cascaded := 0
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		idx := -1
		for i := range inv.Articles {
			if inv.Articles[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}

		stamp := r.now()
		a := &inv.Articles[idx]
		a.Deleted = true
		a.Modified = stamp
		name = a.Name
		found = true

		for i := range inv.Assignments {
			as := &inv.Assignments[i]
			if as.ArticleID == id && !as.Deleted {
				as.Deleted = true
				as.LastModified = stamp
				cascaded++
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	if found {
		r.logger.Info("marked article as deleted", "id", id, "name", name, "assignments", cascaded)
	}
	return nil
}
