package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_RecordsTrace(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "trace",
		Description: "one success, one failure",
		Steps: []Step{
			{Run: []string{"location", "add", "--name", "Cellar"}},
			{Run: []string{"location", "show", "99"}, Expect: &ExpectClause{Status: "error", Code: "E005"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, 1, result.Trace[0].Seq)
	assert.Equal(t, "ok", result.Trace[0].Status)
	assert.JSONEq(t, `{"id":1,"name":"Cellar","imageIds":[]}`, string(result.Trace[0].Data))
	assert.Equal(t, "error", result.Trace[1].Status)
	assert.Equal(t, "E005", result.Trace[1].Code)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "failing",
		Description: "expectations that do not hold",
		Steps: []Step{
			{Run: []string{"article", "add", "--name", "Tea"}, Expect: &ExpectClause{
				Status: "ok",
				Data:   map[string]any{"name": "Coffee"},
			}},
			{Run: []string{"article", "show", "1"}, Expect: &ExpectClause{Status: "error"}},
		},
		Assertions: []Assertion{{Type: AssertLiveCount, Collection: "articles", Count: 2}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "data.name = Tea, want Coffee")
	assert.Contains(t, result.Errors[1], `status = "ok", want "error"`)
	assert.Contains(t, result.Errors[2], "2 live articles")
}

func TestRun_UnexpectedErrorFailsByDefault(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "default_expect",
		Description: "steps without expect must succeed",
		Steps:       []Step{{Run: []string{"article", "show", "1"}}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "(error E005)")
}

func TestRun_EmptyDocument(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "empty",
		Description: "nothing is written",
		Steps:       []Step{{Run: []string{"article", "list"}, Expect: &ExpectClause{Status: "ok", Count: intPtr(0)}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, emptyDocument, result.Document)
}

func TestRun_AppliesConfig(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "config",
		Description: "expiration dates switched off",
		Config:      map[string]any{"enableExpirationDates": false},
		Steps: []Step{
			{Run: []string{"article", "add", "--name", "Milk", "--expiration-days", "7"}},
			{Run: []string{"location", "add"}},
			{Run: []string{"assign", "add", "1", "2"}},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	assert.NotContains(t, string(result.Trace[2].Data), "expirationDate")
}

func intPtr(n int) *int { return &n }

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "name: x\ndescription: y\nstep: []\n", "failed to parse YAML"},
		{"missing name", "description: y\nsteps: [{run: [article, list]}]\n", "name is required"},
		{"missing steps", "name: x\ndescription: y\n", "steps list is required"},
		{"empty run", "name: x\ndescription: y\nsteps: [{run: []}]\n", "steps[0]: run is required"},
		{"bad start", "name: x\ndescription: y\nstart: 2024-13-01\nsteps: [{run: [article, list]}]\n", "start"},
		{"bad advance", "name: x\ndescription: y\nsteps: [{run: [article, list], advance: soon}]\n", "advance"},
		{"bad status", "name: x\ndescription: y\nsteps: [{run: [article, list], expect: {status: fine}}]\n", "status must be ok or error"},
		{"code without error", "name: x\ndescription: y\nsteps: [{run: [article, list], expect: {status: ok, code: E005}}]\n", "code requires status error"},
		{"unknown assertion", "name: x\ndescription: y\nsteps: [{run: [article, list]}]\nassertions: [{type: magic}]\n", "unknown assertion type"},
		{"unknown collection", "name: x\ndescription: y\nsteps: [{run: [article, list]}]\nassertions: [{type: live_count, collection: shelves}]\n", "unknown collection"},
		{"record without where", "name: x\ndescription: y\nsteps: [{run: [article, list]}]\nassertions: [{type: record, collection: articles, expect: {name: a}}]\n", "where is required"},
		{"stock without article", "name: x\ndescription: y\nsteps: [{run: [article, list]}]\nassertions: [{type: stock, count: 1}]\n", "article is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			writeFile(t, path, tt.content)

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to read scenario file"))
}
