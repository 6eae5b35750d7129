package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func sqliteConfig(t *testing.T) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "digraph.db") + "?_pragma=foreign_keys(1)"
	return writeConfig(t, fmt.Sprintf(`
database:
  dialect: sqlite
  dsn: %q
log:
  level: error
types:
  - source: Order
    attribute: Event
`, dsn))
}

func execute(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", path))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, path string, args ...string) string {
	t.Helper()
	out, err := execute(t, path, args...)
	require.NoError(t, err, "digraph %s", strings.Join(args, " "))
	return out
}

func TestCLI(t *testing.T) {
	path := sqliteConfig(t)

	plan := mustExecute(t, path, "migrate", "--dry-run")
	assert.Contains(t, plan, "CREATE TABLE")
	assert.Contains(t, plan, "order_di_graph_edges")
	mustExecute(t, path, "migrate")
	plan = mustExecute(t, path, "migrate", "--dry-run")
	assert.Empty(t, plan, "schema is up to date")

	types := mustExecute(t, path, "types")
	assert.Contains(t, types, "Order\torders\texternal")
	assert.Contains(t, types, "OrderDiGraphLink\torder_di_graph_links\towned")

	out := mustExecute(t, path, "add-edge", "1", "2", "--attr", "7")
	assert.Equal(t, "Edge(id=1, next_state=2, attr=7)\n", out)
	mustExecute(t, path, "add-edge", "2", "3")
	mustExecute(t, path, "add-edge", "1", "3")

	_, err := execute(t, path, "add-edge", "1", "2", "--attr", "7")
	require.ErrorIs(t, err, digraph.ErrDuplicateEdge)

	out = mustExecute(t, path, "edges", "1")
	assert.Equal(t, "Edge(id=1, next_state=2, attr=7)\nEdge(id=3, next_state=3)\n", out)

	dot := mustExecute(t, path, "graph", "1")
	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.Regexp(t, `\b1 -> 2 \[label="?7"?\]`, dot)
	assert.Regexp(t, `\b2 -> 3;`, dot)
	assert.Regexp(t, `\b1 -> 3;`, dot)

	js := mustExecute(t, path, "graph", "1", "--format", "json")
	assert.Contains(t, js, `"multigraph": true`)

	mustExecute(t, path, "remove-edge", "1", "3")
	out = mustExecute(t, path, "edges", "1")
	assert.Equal(t, "Edge(id=1, next_state=2, attr=7)\n", out)

	mustExecute(t, path, "deleted", "--attr", "7")
	out = mustExecute(t, path, "edges", "1")
	assert.Equal(t, "Edge(id=1, next_state=2)\n", out)

	mustExecute(t, path, "deleted", "2")
	out = mustExecute(t, path, "edges", "1")
	assert.Empty(t, out)
}

func TestCLIErrors(t *testing.T) {
	path := sqliteConfig(t)
	mustExecute(t, path, "migrate")

	_, err := execute(t, path, "edges", "x")
	require.ErrorContains(t, err, `invalid id "x"`)

	_, err = execute(t, path, "edges", "1", "--source", "Invoice")
	require.ErrorIs(t, err, digraph.ErrNotRegistered)

	_, err = execute(t, path, "remove-edge", "1", "42")
	require.ErrorIs(t, err, digraph.ErrNotFound)

	_, err = execute(t, path, "graph", "1", "--format", "svg")
	require.ErrorContains(t, err, `unknown format "svg"`)

	_, err = execute(t, path, "edges")
	require.Error(t, err)
}

func TestCLIMemory(t *testing.T) {
	path := writeConfig(t, `
database:
  dialect: memory
log:
  level: error
types:
  - source: Order
    attribute: Event
  - source: Invoice
    attribute: Event
`)
	out := mustExecute(t, path, "migrate")
	assert.Equal(t, "memory backend needs no migration\n", out)

	_, err := execute(t, path, "edges", "1")
	require.ErrorContains(t, err, "--source is required")

	out = mustExecute(t, path, "edges", "1", "--source", "Invoice")
	assert.Empty(t, out)
}
