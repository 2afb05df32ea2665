package inventory

import (
	"context"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

// Location returns the live location with id.
func (r *Repository) Location(id uint32) (model.Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.data.Locations {
		if l.ID == id && !l.Deleted {
			return l.Clone(), true
		}
	}
	return model.Location{}, false
}

// Locations returns every live location in document order.
func (r *Repository) Locations() []model.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Location, 0, len(r.data.Locations))
	for _, l := range r.data.Locations {
		if !l.Deleted {
			out = append(out, l.Clone())
		}
	}
	return out
}

// NewLocation builds an unsaved location with a fresh id.
// See NewArticle.
func (r *Repository) NewLocation(nameTemplate string) model.Location {
	r.mu.RLock()
	taken := make(idgen.Set, len(r.data.Locations))
	for _, l := range r.data.Locations {
		taken[l.ID] = struct{}{}
	}
	r.mu.RUnlock()

	id := idgen.Unique(r.ids, taken)
	l := model.Location{
		ID:       id,
		Name:     FormatName(nameTemplate, id),
		ImageIDs: []uint32{},
	}
	r.logger.Info("created new location", "id", l.ID, "name", l.Name)
	return l
}

// PutLocation inserts the location or replaces the one with the same id.
func (r *Repository) PutLocation(ctx context.Context, location model.Location) error {
	location = location.Clone()
	updated := false
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		for i := range inv.Locations {
			if inv.Locations[i].ID == location.ID {
				inv.Locations[i] = location
				updated = true
				return true
			}
		}
		inv.Locations = append(inv.Locations, location)
		return true
	})
	if err != nil {
		return err
	}
	if updated {
		r.logger.Info("updated location", "id", location.ID, "name", location.Name)
	} else {
		r.logger.Info("added location", "id", location.ID, "name", location.Name)
	}
	return nil
}

// DeleteLocation tombstones the location and cascades to its live
// assignments. A missing id is a no-op.
func (r *Repository) DeleteLocation(ctx context.Context, id uint32) error {
	var name string
	found := false
	cascaded := 0
	err := r.mutate(ctx, func(inv *model.Inventory) bool {
		idx := -1
		for i := range inv.Locations {
			if inv.Locations[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}

		stamp := r.now()
		l := &inv.Locations[idx]
		l.Deleted = true
		name = l.Name
		found = true

		for i := range inv.Assignments {
			as := &inv.Assignments[i]
			if as.LocationID == id && !as.Deleted {
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
		r.logger.Info("marked location as deleted", "id", id, "name", name, "assignments", cascaded)
	}
	return nil
}
