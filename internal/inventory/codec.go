package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pantry/internal/model"
)

// requiredFields lists the keys every record of a collection must carry.
// Without them a record would silently decode with a zero id or amount.
var requiredFields = map[string][]string{
	"articles":    {"id"},
	"locations":   {"id"},
	"assignments": {"id", "articleId", "locationId", "amount"},
}

// decodeDocument parses document content into an inventory.
// Unknown fields, missing required fields and trailing data are rejected
// as CORRUPT_DATA.
func decodeDocument(content string) (model.Inventory, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var inv model.Inventory
	if err := dec.Decode(&inv); err != nil {
		return model.Inventory{}, newParseError(err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return model.Inventory{}, newParseError(fmt.Errorf("unexpected data after document"))
	}
	if err := checkRequired(content); err != nil {
		return model.Inventory{}, newParseError(err)
	}

	inv.Normalize()
	return inv, nil
}

// checkRequired reports the first record that lacks a required key.
// content has already decoded into model.Inventory.
func checkRequired(content string) error {
	var raw map[string][]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return err
	}
	for _, collection := range []string{"articles", "locations", "assignments"} {
		for i, record := range raw[collection] {
			for _, key := range requiredFields[collection] {
				if _, ok := record[key]; !ok {
					return fmt.Errorf("%s[%d]: missing field %q", collection, i, key)
				}
			}
		}
	}
	return nil
}

// encodeDocument serializes an inventory.
// HTML escaping is disabled so names like "Salt & Pepper" stay readable.
func encodeDocument(inv model.Inventory) (string, error) {
	inv.Normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inv); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return buf.String(), nil
}

// normalizeText NFC-normalizes every free-text field in place so visually
// identical names compare and sort equal.
func normalizeText(inv *model.Inventory) {
	for i := range inv.Articles {
		a := &inv.Articles[i]
		a.Name = norm.NFC.String(a.Name)
		a.Brand = norm.NFC.String(a.Brand)
		a.Abbreviation = norm.NFC.String(a.Abbreviation)
		a.Notes = norm.NFC.String(a.Notes)
	}
	for i := range inv.Locations {
		l := &inv.Locations[i]
		l.Name = norm.NFC.String(l.Name)
		l.Notes = norm.NFC.String(l.Notes)
	}
}
