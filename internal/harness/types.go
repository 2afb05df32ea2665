package harness

import "encoding/json"

// TraceEvent records one CLI invocation and its response.
type TraceEvent struct {
	Seq    int             `json:"seq"`
	Args   []string        `json:"args"`
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists every step in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Document is the raw inventory document after the last step.
	Document string `json:"document"`
}

// NewResult creates a passing result with no steps.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
