package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pantry/internal/model"
)

// DefaultStart is the clock start date of scenarios that set none.
const DefaultStart = "2024-01-01"

// Scenario describes a sequence of CLI invocations and the document they
// are expected to leave behind.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Start is the YYYY-MM-DD date the clock starts at. Defaults to
	// DefaultStart.
	Start string `yaml:"start,omitempty"`

	// Config is written to a config file passed with --config.
	Config map[string]any `yaml:"config,omitempty"`

	// Steps run in order, each as a separate CLI invocation.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final document.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single CLI invocation.
type Step struct {
	// Run holds the command arguments, without global flags.
	Run []string `yaml:"run"`

	// Advance moves the clock forward before the command runs.
	// Uses time.ParseDuration syntax.
	Advance string `yaml:"advance,omitempty"`

	// Expect checks the response. Nil requires status ok.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected response of a step.
type ExpectClause struct {
	// Status is "ok" or "error".
	Status string `yaml:"status"`

	// Code is the expected error code when Status is "error".
	Code string `yaml:"code,omitempty"`

	// Data holds expected fields of an object payload.
	// Subset match: fields not listed are not checked.
	Data map[string]any `yaml:"data,omitempty"`

	// Count is the expected length of an array payload.
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the final document.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Collection is "articles", "locations" or "assignments"
	// (live_count, record).
	Collection string `yaml:"collection,omitempty"`

	// Where selects records by exact field values (record).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds expected field values of the selected record (record).
	// Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Article is the article whose stock is checked (stock).
	Article uint32 `yaml:"article,omitempty"`

	// Count is the expected number (live_count, stock).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertLiveCount = "live_count"
	AssertRecord    = "record"
	AssertStock     = "stock"
)

var collections = []string{"articles", "locations", "assignments"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Start != "" {
		if _, err := model.ParseDate(s.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if len(step.Run) == 0 {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("steps[%d]: advance: %w", i, err)
			}
			if d < 0 {
				return fmt.Errorf("steps[%d]: advance must not be negative", i)
			}
		}
		if e := step.Expect; e != nil {
			if e.Status != "ok" && e.Status != "error" {
				return fmt.Errorf("steps[%d].expect: status must be ok or error, got %q", i, e.Status)
			}
			if e.Code != "" && e.Status != "error" {
				return fmt.Errorf("steps[%d].expect: code requires status error", i)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertLiveCount:
		if !slices.Contains(collections, a.Collection) {
			return fmt.Errorf("assertions[%d]: unknown collection %q", index, a.Collection)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for live_count", index)
		}
	case AssertRecord:
		if !slices.Contains(collections, a.Collection) {
			return fmt.Errorf("assertions[%d]: unknown collection %q", index, a.Collection)
		}
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertStock:
		if a.Article == 0 {
			return fmt.Errorf("assertions[%d]: article is required for stock", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
