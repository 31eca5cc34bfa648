package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "bolt_to_nut.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bolt_to_nut", scenario.Name)
	assert.Empty(t, scenario.Schema)
	require.Len(t, scenario.Records, 1)
	assert.Equal(t, []string{"1", "Bolt", "ACME", "X", "Y", "M", "Box", "9.99", "n/a"}, scenario.Records[0])
	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, OpSearch, scenario.Steps[0].Op)
	assert.Equal(t, []int64{1}, scenario.Steps[0].Expect.Keys)
	require.NotNil(t, scenario.Steps[1].Key)
	assert.Equal(t, int64(1), *scenario.Steps[1].Key)
	assert.Equal(t, "", scenario.Steps[1].Fields[8])
	assert.Len(t, scenario.Assertions, 3)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_AllFixturesParse(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		_, err := LoadScenario(path)
		assert.NoError(t, err, path)
	}
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: a\ndescription: b\nsteps: [{op: save}]\nassertion: []\n",
			wantErr: "field assertion not found",
		},
		{
			name:    "missing name",
			yaml:    "description: b\nsteps: [{op: save}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: a\nsteps: [{op: save}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: a\ndescription: b\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: a\ndescription: b\nsteps: [{op: upsert}]\n",
			wantErr: `steps[0]: unknown op "upsert"`,
		},
		{
			name:    "delete without key",
			yaml:    "name: a\ndescription: b\nsteps: [{op: delete}]\n",
			wantErr: "steps[0]: delete requires key",
		},
		{
			name:    "update without fields",
			yaml:    "name: a\ndescription: b\nsteps: [{op: update, key: 1}]\n",
			wantErr: "steps[0]: update requires key and fields",
		},
		{
			name:    "search without field",
			yaml:    "name: a\ndescription: b\nsteps: [{op: search, value: x}]\n",
			wantErr: "steps[0]: search requires field",
		},
		{
			name:    "unknown error class",
			yaml:    "name: a\ndescription: b\nsteps: [{op: save, expect: {error: boom}}]\n",
			wantErr: `unknown error class "boom"`,
		},
		{
			name:    "missing and records",
			yaml:    "name: a\ndescription: b\nmissing: true\nrecords: [[\"1\"]]\nsteps: [{op: save}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "assertion without count",
			yaml:    "name: a\ndescription: b\nsteps: [{op: save}]\nassertions: [{type: persist_count}]\n",
			wantErr: "assertions[0]: persist_count requires count",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: a\ndescription: b\nsteps: [{op: save}]\nassertions: [{type: trace_order}]\n",
			wantErr: `unknown assertion type "trace_order"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_NotYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed\n"), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
