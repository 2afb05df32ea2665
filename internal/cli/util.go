package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/pantry/internal/model"
)

func jsonMarshal(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// parseID parses a decimal record id or amount.
func parseID(what, s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errInvalidArgs, what, s)
	}
	return uint32(n), nil
}

// parseDate checks a YYYY-MM-DD flag value. Empty is allowed.
func parseDate(flag, s string) error {
	if s == "" {
		return nil
	}
	if _, err := model.ParseDate(s); err != nil {
		return fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", errInvalidArgs, flag, s)
	}
	return nil
}

func notFound(what string, id uint32) error {
	return fmt.Errorf("%s %d: %w", what, id, errNotFound)
}

func errInvalid(err error) error {
	return fmt.Errorf("%w: %w", errInvalidArgs, err)
}
