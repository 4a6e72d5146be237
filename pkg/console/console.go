// Package console builds AWS console deep links and prints them, using
// OSC 8 hyperlinks when stdout is a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var linkColor = color.New(color.FgCyan)

// isTerminal reports whether stdout is a TTY. Overridable in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// URL resolves path to a full console URL. Paths starting with "/" are
// treated as codesuite paths and expanded with the region subdomain and a
// region query parameter; anything else is returned as-is.
func URL(region, path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("https://%s.console.aws.amazon.com/codesuite%s%sregion=%s",
		region, path, sep, region)
}

// Hyperlink wraps name in an OSC 8 terminal hyperlink to url. When stdout
// is not a terminal the name is returned unchanged.
func Hyperlink(url, name string) string {
	if !isTerminal() {
		return name
	}
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, name)
}

// PrintLink writes a "link: <url>" line for the resolved console path.
func PrintLink(w io.Writer, region, path string) {
	linkColor.Fprintf(w, "link: %s\n", URL(region, path))
}
