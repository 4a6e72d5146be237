package diff

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestComputeIdenticalTexts(t *testing.T) {
	text := "alpha\nbeta\ngamma\n"
	if rows := Compute(text, text, DefaultContext); rows != nil {
		t.Fatalf("expected no rows for identical texts, got %d", len(rows))
	}
}

func TestComputeReplacementPairsRows(t *testing.T) {
	from := "one\ntwo\nthree\n"
	to := "one\n2\nthree\n"

	rows := Compute(from, to, DefaultContext)
	want := []Row{
		{Code: ' ', FromLine: 1, ToLine: 1, Text: "one"},
		{Code: '-', FromLine: 2, Text: "two"},
		{Code: '+', ToLine: 2, Text: "2"},
		{Code: ' ', FromLine: 3, ToLine: 3, Text: "three"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %#v", len(rows), len(want), rows)
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("row %d = %#v, want %#v", i, rows[i], w)
		}
	}
}

func TestComputeInsertAndDelete(t *testing.T) {
	from := "keep\ngone\n"
	to := "keep\n"

	rows := Compute(from, to, DefaultContext)
	if len(rows) != 2 {
		t.Fatalf("got %d rows: %#v", len(rows), rows)
	}
	if rows[1].Code != '-' || rows[1].FromLine != 2 || rows[1].ToLine != 0 {
		t.Errorf("delete row = %#v", rows[1])
	}

	rows = Compute(to, from, DefaultContext)
	if len(rows) != 2 {
		t.Fatalf("got %d rows: %#v", len(rows), rows)
	}
	if rows[1].Code != '+' || rows[1].ToLine != 2 || rows[1].FromLine != 0 {
		t.Errorf("insert row = %#v", rows[1])
	}
}

func TestComputeWholeFileAdded(t *testing.T) {
	rows := Compute("", "a\nb\n", DefaultContext)
	if len(rows) != 2 {
		t.Fatalf("got %d rows: %#v", len(rows), rows)
	}
	for i, row := range rows {
		if row.Code != '+' || row.ToLine != i+1 || row.FromLine != 0 {
			t.Errorf("row %d = %#v", i, row)
		}
	}
}

func TestComputeCollapsesWithSeparator(t *testing.T) {
	var from, to strings.Builder
	for i := 0; i < 20; i++ {
		line := "line\n"
		if i == 2 {
			from.WriteString("old\n")
			to.WriteString("new\n")
			continue
		}
		if i == 17 {
			from.WriteString("before\n")
			to.WriteString("after\n")
			continue
		}
		from.WriteString(line)
		to.WriteString(line)
	}

	rows := Compute(from.String(), to.String(), 2)
	sepCount := 0
	for _, row := range rows {
		if row.Separator {
			sepCount++
		}
	}
	if sepCount != 1 {
		t.Fatalf("expected one separator row, got %d: %#v", sepCount, rows)
	}
	// Two changes of two rows each, plus up to two context lines on each
	// side of each change, plus the separator.
	if len(rows) > 13 {
		t.Errorf("collapse kept too many rows: %d", len(rows))
	}
}

func TestComputeIgnoresIndentationOnlyChange(t *testing.T) {
	from := "func main() {\nreturn\n}\n"
	to := "func main() {\n\treturn\n}\n"
	if rows := Compute(from, to, DefaultContext); rows != nil {
		t.Fatalf("indentation-only change should produce no rows, got %#v", rows)
	}
}

func TestComputeRestoresIndentation(t *testing.T) {
	from := "\tif a {\n\t\tdo()\n\t}\n"
	to := "\tif a {\n\t\tdone()\n\t}\n"

	rows := Compute(from, to, DefaultContext)
	var got []string
	for _, row := range rows {
		if row.Code != ' ' {
			got = append(got, row.Text)
		}
	}
	if len(got) != 2 || got[0] != "\t\tdo()" || got[1] != "\t\tdone()" {
		t.Fatalf("indentation not restored: %#v", got)
	}
}

func TestRenderLineNumbersAndCallback(t *testing.T) {
	var buf bytes.Buffer
	var seen []int
	r := &Renderer{AfterLine: func(w io.Writer, toLine int) {
		seen = append(seen, toLine)
	}}
	r.Render(&buf, "one\ntwo\n", "one\n2\n")

	out := buf.String()
	if !strings.Contains(out, "   1    1:   one") {
		t.Errorf("missing unchanged row in output:\n%s", out)
	}
	if !strings.Contains(out, "   2     : - two") {
		t.Errorf("missing delete row in output:\n%s", out)
	}
	if !strings.Contains(out, "        2: + 2") {
		t.Errorf("missing insert row in output:\n%s", out)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("AfterLine called with %v, want [1 2]", seen)
	}
}
