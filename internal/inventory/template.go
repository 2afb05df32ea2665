package inventory

import (
	"strconv"
	"strings"
)

// IDPlaceholder is replaced with the decimal record id in name templates.
const IDPlaceholder = "%1$d"

// FormatName substitutes every IDPlaceholder in tmpl with id,
// e.g. "Article #%1$d" becomes "Article #42".
func FormatName(tmpl string, id uint32) string {
	return strings.ReplaceAll(tmpl, IDPlaceholder, strconv.FormatUint(uint64(id), 10))
}
