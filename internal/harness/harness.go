package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pantry/internal/cli"
	"github.com/roach88/pantry/internal/clock"
	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/model"
)

const emptyDocument = `{"articles":[],"locations":[],"assignments":[]}`

// Harness is the scenario execution engine.
// It runs every step against one data directory with a deterministic
// clock and id source.
type Harness struct {
	dir        string
	configPath string
	clock      *clock.Fixed
	ids        *idgen.SequenceSource
}

// response mirrors the JSON envelope printed by the CLI.
type response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *cli.CLIError   `json:"error"`
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary data directory that is removed
// afterwards. A failed step is recorded in the result and does not stop
// the run; the returned error is reserved for harness failures.
func Run(scenario *Scenario) (*Result, error) {
	root, err := os.MkdirTemp("", "pantry-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(root)

	h, err := newHarness(scenario, root)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: advance: %w", i, err)
			}
			h.clock.Advance(d)
		}

		event, err := h.invoke(i+1, step.Run)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Trace = append(result.Trace, event)

		for _, msg := range checkExpect(event, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, strings.Join(step.Run, " "), msg))
		}
	}

	doc, err := h.export()
	if err != nil {
		return nil, err
	}
	result.Document = doc

	for _, msg := range EvaluateAssertions(doc, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// newHarness prepares root with a config file and a data directory.
func newHarness(scenario *Scenario, root string) (*Harness, error) {
	start := scenario.Start
	if start == "" {
		start = DefaultStart
	}
	day, err := model.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	// An explicit config file keeps $PANTRY_CONFIG out of the run.
	cfg := scenario.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	configPath := filepath.Join(root, "pantry.yaml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	return &Harness{
		dir:        filepath.Join(root, "data"),
		configPath: configPath,
		clock:      clock.NewFixed(day),
		ids:        &idgen.SequenceSource{},
	}, nil
}

// execute runs one CLI invocation and returns its stdout.
func (h *Harness) execute(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommandWithOptions(&cli.RootOptions{Clock: h.clock, IDs: h.ids})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", h.configPath, "--data-dir", h.dir}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// invoke runs a step with JSON output and records the response.
// Command failures are part of the response, not an error.
func (h *Harness) invoke(seq int, args []string) (TraceEvent, error) {
	out, _ := h.execute(append([]string{"--format", "json"}, args...)...)

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return TraceEvent{}, fmt.Errorf("unparseable response %q: %w", out, err)
	}
	event := TraceEvent{
		Seq:    seq,
		Args:   args,
		Status: resp.Status,
		Data:   resp.Data,
	}
	if resp.Error != nil {
		event.Code = resp.Error.Code
	}
	return event, nil
}

// export returns the raw document, or an empty one if none was written.
func (h *Harness) export() (string, error) {
	out, err := h.execute("--format", "json", "export")
	if err == nil {
		return out, nil
	}
	var resp response
	if json.Unmarshal([]byte(out), &resp) == nil && resp.Error != nil &&
		resp.Error.Code == cli.ErrCodeNotFound {
		return emptyDocument, nil
	}
	return "", fmt.Errorf("export: %w", err)
}
