package inventory

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

var nonBlank = regexp.MustCompile(`\S`)

// nameRules requires a name with at least one non-space character.
var nameRules = []validation.Rule{
	validation.Required.Error("cannot be blank"),
	validation.Match(nonBlank).Error("cannot be blank"),
}

// validateInventory checks names and references.
// The first violation aborts validation.
func validateInventory(inv model.Inventory) error {
	articleIDs := make(idgen.Set, len(inv.Articles))
	for _, a := range inv.Articles {
		if err := validation.ValidateStruct(&a, validation.Field(&a.Name, nameRules...)); err != nil {
			return newInvalidRecordError("article", a.ID, err)
		}
		articleIDs[a.ID] = struct{}{}
	}

	locationIDs := make(idgen.Set, len(inv.Locations))
	for _, l := range inv.Locations {
		if err := validation.ValidateStruct(&l, validation.Field(&l.Name, nameRules...)); err != nil {
			return newInvalidRecordError("location", l.ID, err)
		}
		locationIDs[l.ID] = struct{}{}
	}

	// References resolve by id regardless of tombstone state.
	for _, as := range inv.Assignments {
		if !articleIDs.Has(as.ArticleID) {
			return newDanglingReferenceError(as.ID, "article", as.ArticleID)
		}
		if !locationIDs.Has(as.LocationID) {
			return newDanglingReferenceError(as.ID, "location", as.LocationID)
		}
	}
	return nil
}

// parseAndValidate decodes content and validates the result.
func parseAndValidate(content string) (model.Inventory, error) {
	inv, err := decodeDocument(content)
	if err != nil {
		return model.Inventory{}, err
	}
	if err := validateInventory(inv); err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}
