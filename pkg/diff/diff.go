// Package diff renders line-aligned colorized diffs of two text blobs.
//
// Lines are compared with leading/trailing whitespace stripped so that
// indentation-only churn does not show up as a change, but output restores
// the original indentation. Unchanged regions are collapsed to a few context
// lines around each change, separated by a horizontal rule.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Row is one rendered diff line. FromLine/ToLine are 1-based and zero when
// the line has no counterpart on that side. A Separator row marks the gap
// between context blocks.
type Row struct {
	Code      byte // '+', '-' or ' '
	FromLine  int
	ToLine    int
	Text      string
	Separator bool
}

// Renderer writes colorized diff rows.
type Renderer struct {
	Context int
	// AfterLine, when set, runs after each row carrying a new-side line
	// number. Used to interleave review comments anchored to the new file.
	AfterLine func(w io.Writer, toLine int)
}

var (
	addColor    = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	keepColor   = color.New(color.FgWhite)
	ruleColor   = color.New(color.FgWhite, color.Faint)
)

// Render writes the colorized diff of fromTxt and toTxt to w.
func (r *Renderer) Render(w io.Writer, fromTxt, toTxt string) {
	context := r.Context
	if context <= 0 {
		context = DefaultContext
	}

	for _, row := range Compute(fromTxt, toTxt, context) {
		if row.Separator {
			ruleColor.Fprintln(w, strings.Repeat("─", 72))
			continue
		}

		from, to := "", ""
		if row.FromLine > 0 {
			from = fmt.Sprintf("%d", row.FromLine)
		}
		if row.ToLine > 0 {
			to = fmt.Sprintf("%d", row.ToLine)
		}

		c := keepColor
		switch row.Code {
		case '+':
			c = addColor
		case '-':
			c = removeColor
		}
		c.Fprintf(w, "%4s %4s: %c %s\n", from, to, row.Code, row.Text)

		if r.AfterLine != nil && row.ToLine > 0 {
			r.AfterLine(w, row.ToLine)
		}
	}
}

// Compute returns the diff rows for two texts, collapsed to context lines
// around each change. Identical texts produce no rows.
func Compute(fromTxt, toTxt string, context int) []Row {
	fromLines := splitLines(fromTxt)
	toLines := splitLines(toTxt)

	rows := align(fromLines, toLines)
	return collapse(rows, context)
}

// align produces the full row list, pairing replaced lines as a '-' row
// followed by a '+' row.
func align(fromLines, toLines []string) []Row {
	dmp := diffmatchpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(joinTrimmed(fromLines), joinTrimmed(toLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	var rows []Row
	fromNo, toNo := 0, 0

	emitDelete := func() {
		fromNo++
		rows = append(rows, Row{Code: '-', FromLine: fromNo, Text: restore(fromLines, fromNo)})
	}
	emitInsert := func() {
		toNo++
		rows = append(rows, Row{Code: '+', ToLine: toNo, Text: restore(toLines, toNo)})
	}

	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for range chunkLines(d.Text) {
				fromNo++
				toNo++
				rows = append(rows, Row{Code: ' ', FromLine: fromNo, ToLine: toNo, Text: restore(toLines, toNo)})
			}

		case diffmatchpatch.DiffDelete:
			deleted := chunkLines(d.Text)
			// A delete immediately followed by an insert is a replacement;
			// interleave the pairs so old and new stay visually adjacent.
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				inserted := chunkLines(diffs[i+1].Text)
				i++
				n := len(deleted)
				if len(inserted) > n {
					n = len(inserted)
				}
				for j := 0; j < n; j++ {
					if j < len(deleted) {
						emitDelete()
					}
					if j < len(inserted) {
						emitInsert()
					}
				}
				continue
			}
			for range deleted {
				emitDelete()
			}

		case diffmatchpatch.DiffInsert:
			for range chunkLines(d.Text) {
				emitInsert()
			}
		}
	}

	return rows
}

// collapse drops unchanged rows further than context lines from any change,
// inserting separator rows between the remaining blocks.
func collapse(rows []Row, context int) []Row {
	keep := make([]bool, len(rows))
	changed := false
	for i, row := range rows {
		if row.Code == ' ' {
			continue
		}
		changed = true
		lo := i - context
		if lo < 0 {
			lo = 0
		}
		hi := i + context
		if hi >= len(rows) {
			hi = len(rows) - 1
		}
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}
	if !changed {
		return nil
	}

	var out []Row
	prevKept := -1
	for i, row := range rows {
		if !keep[i] {
			continue
		}
		if prevKept >= 0 && i > prevKept+1 {
			out = append(out, Row{Separator: true})
		}
		out = append(out, row)
		prevKept = i
	}
	return out
}

// restore returns the 1-based line with trailing whitespace removed but
// original indentation intact.
func restore(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], " \t")
}

// splitLines splits text into lines without the trailing newline artifact.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// joinTrimmed joins whitespace-stripped lines for comparison.
func joinTrimmed(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// chunkLines splits a diff chunk into its component lines.
func chunkLines(chunk string) []string {
	return splitLines(chunk)
}
