package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// document is the generic decoding of an inventory document.
type document map[string][]map[string]any

func parseDocument(content string) (document, error) {
	var doc document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func deleted(record map[string]any) bool {
	d, _ := record["deleted"].(bool)
	return d
}

// assertLiveCount checks the number of records in a collection that are
// not tombstoned.
func assertLiveCount(doc document, assertion Assertion) error {
	count := 0
	for _, record := range doc[assertion.Collection] {
		if !deleted(record) {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertLiveCount,
			Expected: fmt.Sprintf("%d live %s", assertion.Count, assertion.Collection),
			Actual:   fmt.Sprintf("%d live %s", count, assertion.Collection),
		}
	}
	return nil
}

// assertRecord checks that exactly one record matches Where and that it
// carries every field in Expect.
func assertRecord(doc document, assertion Assertion) error {
	var matched []map[string]any
	for _, record := range doc[assertion.Collection] {
		if matchFields(record, assertion.Where) {
			matched = append(matched, record)
		}
	}

	whereDesc := formatFields(assertion.Where)
	switch len(matched) {
	case 0:
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record in %s where %s", assertion.Collection, whereDesc),
			Actual:   "record not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("exactly one record in %s where %s", assertion.Collection, whereDesc),
			Actual:   fmt.Sprintf("%d records matched (assertion is ambiguous)", len(matched)),
		}
	}

	record := matched[0]
	for _, key := range sortedKeys(assertion.Expect) {
		expected := assertion.Expect[key]
		actual, exists := record[key]
		if !exists {
			return &AssertionError{
				Type:     AssertRecord,
				Expected: fmt.Sprintf("field %q = %v", key, expected),
				Actual:   fmt.Sprintf("field %q not present", key),
			}
		}
		if !valuesEqual(actual, expected) {
			return &AssertionError{
				Type:     AssertRecord,
				Expected: fmt.Sprintf("field %q = %v", key, expected),
				Actual:   fmt.Sprintf("field %q = %v", key, actual),
			}
		}
	}
	return nil
}

// assertStock checks the units of an article that are neither deleted
// nor consumed.
func assertStock(doc document, assertion Assertion) error {
	var stock float64
	for _, record := range doc["assignments"] {
		if deleted(record) || record["consumedDate"] != nil {
			continue
		}
		if !valuesEqual(record["articleId"], assertion.Article) {
			continue
		}
		amount, _ := record["amount"].(float64)
		stock += amount
	}
	if stock != float64(assertion.Count) {
		return &AssertionError{
			Type:     AssertStock,
			Expected: fmt.Sprintf("%d units of article %d", assertion.Count, assertion.Article),
			Actual:   fmt.Sprintf("%v units", stock),
		}
	}
	return nil
}

// matchFields checks if actual contains all expected fields (subset match).
// Extra keys in actual are ignored.
func matchFields(actual map[string]any, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists || !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares a value decoded from JSON with one decoded from
// YAML. Numbers compare by value regardless of Go type.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	}
	return v
}

// formatFields creates a human-readable description of field conditions.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return "(no conditions)"
	}
	parts := make([]string, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the final document.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(content string, assertions []Assertion) []string {
	if len(assertions) == 0 {
		return nil
	}
	doc, err := parseDocument(content)
	if err != nil {
		return []string{err.Error()}
	}

	var errors []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertLiveCount:
			err = assertLiveCount(doc, assertion)
		case AssertRecord:
			err = assertRecord(doc, assertion)
		case AssertStock:
			err = assertStock(doc, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// checkExpect compares a step response with its expectation.
// Returns a slice of error messages for mismatches.
func checkExpect(event TraceEvent, expect *ExpectClause) []string {
	if expect == nil {
		expect = &ExpectClause{Status: "ok"}
	}

	var errors []string
	if event.Status != expect.Status {
		msg := fmt.Sprintf("status = %q, want %q", event.Status, expect.Status)
		if event.Code != "" {
			msg += fmt.Sprintf(" (error %s)", event.Code)
		}
		errors = append(errors, msg)
	}
	if expect.Code != "" && event.Code != expect.Code {
		errors = append(errors, fmt.Sprintf("code = %q, want %q", event.Code, expect.Code))
	}

	if len(expect.Data) > 0 {
		var data map[string]any
		if err := json.Unmarshal(event.Data, &data); err != nil {
			errors = append(errors, fmt.Sprintf("data is not an object: %s", event.Data))
		} else {
			for _, key := range sortedKeys(expect.Data) {
				if actual, ok := data[key]; !ok || !valuesEqual(actual, expect.Data[key]) {
					errors = append(errors, fmt.Sprintf("data.%s = %v, want %v", key, actual, expect.Data[key]))
				}
			}
		}
	}

	if expect.Count != nil {
		var items []any
		if err := json.Unmarshal(event.Data, &items); err != nil {
			errors = append(errors, fmt.Sprintf("data is not an array: %s", event.Data))
		} else if len(items) != *expect.Count {
			errors = append(errors, fmt.Sprintf("len(data) = %d, want %d", len(items), *expect.Count))
		}
	}
	return errors
}
