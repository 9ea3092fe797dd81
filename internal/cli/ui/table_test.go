package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "METHOD", "PATH", "NAME")
	table.AddRow("GET", "/api/causes", "causes.list")
	table.AddRow("DELETE", "/api/causes/{id}", "causes.delete")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "METHOD  PATH              NAME", lines[0])
	assert.Equal(t, "──────  ────────────────  ─────────────", lines[1])
	assert.Equal(t, "GET     /api/causes       causes.list", lines[2])
	assert.Equal(t, "DELETE  /api/causes/{id}  causes.delete", lines[3])
}

func TestTableShortRow(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "A", "B")
	table.AddRow("x")
	table.Render()

	assert.Contains(t, buf.String(), "x  \n")
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Version", "1.0.0")
	table.AddRow("Go", "go1.23")
	table.Render()

	assert.Equal(t, "Version: 1.0.0\nGo:      go1.23\n", buf.String())
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, true, "created %d tables", 7)
	Error(&buf, true, errors.New("boom"))

	assert.Equal(t, "✓ created 7 tables\nError: boom\n", buf.String())
}
