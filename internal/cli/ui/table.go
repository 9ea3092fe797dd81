// Package ui renders command output for the causeway CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows under a header with aligned columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := t.style(color.Bold, color.FgCyan)
	for i, header := range t.headers {
		bold.Fprint(t.writer, cell(header, widths[i], i == len(widths)-1))
	}
	fmt.Fprintln(t.writer)

	gray := t.style(color.FgHiBlack)
	for i, width := range widths {
		gray.Fprint(t.writer, strings.Repeat("─", width))
		if i < len(widths)-1 {
			gray.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i := range widths {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			fmt.Fprint(t.writer, cell(value, widths[i], i == len(widths)-1))
		}
		fmt.Fprintln(t.writer)
	}
}

func (t *Table) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

// cell pads s to width; the last column is not padded
func cell(s string, width int, last bool) string {
	if last {
		return s
	}
	return padRight(s, width) + "  "
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable renders aligned key: value lines
type KeyValueTable struct {
	writer  io.Writer
	rows    [][2]string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	width := 0
	for _, row := range t.rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}

	cyan := color.New(color.FgCyan, color.Bold)
	if t.noColor {
		cyan.DisableColor()
	}
	for _, row := range t.rows {
		cyan.Fprint(t.writer, padRight(row[0]+":", width+1))
		fmt.Fprintf(t.writer, " %s\n", row[1])
	}
}

// Success writes a green check line
func Success(w io.Writer, noColor bool, format string, args ...any) {
	green := color.New(color.FgGreen)
	if noColor {
		green.DisableColor()
	}
	green.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// Error writes a red error line
func Error(w io.Writer, noColor bool, err error) {
	red := color.New(color.FgRed, color.Bold)
	if noColor {
		red.DisableColor()
	}
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}
