// Package table renders box-drawn tables with column-level colorization
// and relative timestamps.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Rule colorizes a cell whose value matches Pattern.
type Rule struct {
	Pattern *regexp.Regexp
	Color   *color.Color
}

// Column describes one table column. TimeAgo columns render time.Time
// values as a relative duration. Rules are tried in order and the first
// match wins.
type Column struct {
	Header  string
	TimeAgo bool
	Rules   []Rule
}

// Table accumulates rows and renders them with box-drawing borders.
type Table struct {
	Title   string
	Counter bool
	// CounterColor, when set, colorizes the counter cells.
	CounterColor *color.Color

	columns []Column
	rows    [][]string
	colors  [][]*color.Color
	dimmed  []bool
}

// escapeSeq matches ANSI color codes and OSC 8 hyperlink wrappers, which
// take no columns on screen.
var escapeSeq = regexp.MustCompile(`\x1b(\[[0-9;]*m|\]8;;[^\x1b]*\x1b\\)`)

// cellWidth is the display width of a cell, ignoring escape sequences.
func cellWidth(s string) int {
	return runewidth.StringWidth(escapeSeq.ReplaceAllString(s, ""))
}

// New returns a table with the given columns.
func New(columns ...Column) *Table {
	return &Table{columns: columns}
}

// MustRule compiles pattern and pairs it with the given color attributes.
func MustRule(pattern string, attrs ...color.Attribute) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Color: color.New(attrs...)}
}

// AddRow appends one row. Values are matched to columns positionally;
// time.Time values in TimeAgo columns render relative to now, other
// time.Time values render as ISO timestamps.
func (t *Table) AddRow(values ...any) {
	cells := make([]string, len(t.columns))
	cellColors := make([]*color.Color, len(t.columns))

	for i := range t.columns {
		if i >= len(values) {
			break
		}
		cells[i] = t.format(i, values[i])
		for _, rule := range t.columns[i].Rules {
			if rule.Pattern.MatchString(cells[i]) {
				cellColors[i] = rule.Color
				break
			}
		}
	}

	t.rows = append(t.rows, cells)
	t.colors = append(t.colors, cellColors)
	t.dimmed = append(t.dimmed, false)
}

// DimLastRow renders the most recently added row faint, overriding any
// colorize rules.
func (t *Table) DimLastRow() {
	if len(t.dimmed) > 0 {
		t.dimmed[len(t.dimmed)-1] = true
	}
}

func (t *Table) format(col int, val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if t.columns[col].TimeAgo {
			return humanize.Time(v)
		}
		return v.Format("2006-01-02T15:04:05")
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	headers := make([]string, 0, len(t.columns)+1)
	if t.Counter {
		headers = append(headers, "#")
	}
	for _, c := range t.columns {
		headers = append(headers, c.Header)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for n, row := range t.rows {
		cells := t.counterRow(n, row)
		for i, cell := range cells {
			if w := cellWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	if t.Title != "" {
		fmt.Fprintln(w, t.Title)
	}
	t.rule(w, "┌", "┬", "┐", widths)
	t.printRow(w, headers, nil, false, widths)
	t.rule(w, "├", "┼", "┤", widths)
	for n, row := range t.rows {
		cells := t.counterRow(n, row)
		cellColors := t.colors[n]
		if t.Counter {
			cellColors = append([]*color.Color{t.CounterColor}, cellColors...)
		}
		t.printRow(w, cells, cellColors, t.dimmed[n], widths)
	}
	t.rule(w, "└", "┴", "┘", widths)
}

func (t *Table) counterRow(n int, row []string) []string {
	if !t.Counter {
		return row
	}
	return append([]string{fmt.Sprintf("%d", n+1)}, row...)
}

func (t *Table) rule(w io.Writer, left, mid, right string, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("─", width+2)
	}
	fmt.Fprintln(w, left+strings.Join(parts, mid)+right)
}

var dimColor = color.New(color.Faint)

func (t *Table) printRow(w io.Writer, cells []string, cellColors []*color.Color, dim bool, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded := cell + strings.Repeat(" ", width-cellWidth(cell))
		switch {
		case dim:
			padded = dimColor.Sprint(padded)
		case cellColors != nil && i < len(cellColors) && cellColors[i] != nil:
			padded = cellColors[i].Sprint(padded)
		}
		parts[i] = " " + padded + " "
	}
	fmt.Fprintln(w, "│"+strings.Join(parts, "│")+"│")
}
