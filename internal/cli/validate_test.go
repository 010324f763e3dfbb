package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateSchema = `
#State: {
	count: int & >=0
	label?: string
}
`

func executeValidate(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateCommand_DocumentOnly(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "state.yaml", "count: 1\nitems: [a, b]\n")

	out, err := executeValidate(t, &RootOptions{Format: "text"}, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidateCommand_SchemaMatch(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "state.json", `{"count": 2, "label": "x"}`)
	schemaFile := writeFile(t, dir, "state.cue", stateSchema)

	out, err := executeValidate(t, &RootOptions{Format: "json"}, doc, "--schema", schemaFile)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestValidateCommand_SchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "state.json", `{"count": -1, "extra": true}`)
	schemaFile := writeFile(t, dir, "state.cue", stateSchema)

	out, err := executeValidate(t, &RootOptions{Format: "text"}, doc, "--schema", schemaFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match")
}

func TestValidateCommand_CommandErrors(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "state.json", `{"count": 1}`)
	badSchema := writeFile(t, dir, "bad.cue", "#State: {")

	tests := []struct {
		name string
		args []string
	}{
		{"missing document", []string{filepath.Join(dir, "absent.json")}},
		{"malformed document", []string{writeFile(t, dir, "broken.json", `{"count":`)}},
		{"missing schema", []string{doc, "--schema", filepath.Join(dir, "absent.cue")}},
		{"schema does not compile", []string{doc, "--schema", badSchema}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeValidate(t, &RootOptions{Format: "text"}, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
