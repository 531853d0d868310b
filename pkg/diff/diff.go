// Package diff renders line-oriented unified diffs.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	// MaxLines bounds the rendered diff body.
	MaxLines        = 2000
	truncateMessage = "... (diff truncated) ..."
)

// Unified compares from and to line by line and returns a unified diff with
// the given labels in its header. Identical inputs yield "".
func Unified(from, to []byte, fromLabel, toLabel string) string {
	if string(from) == string(to) {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(string(from), string(to))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var body []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitLines(d.Text) {
			body = append(body, prefix+line)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", fromLabel, toLabel)
	fmt.Fprintf(&sb, "@@ -1,%d +1,%d @@\n", len(splitLines(string(from))), len(splitLines(string(to))))
	if len(body) > MaxLines {
		body = append(body[:MaxLines], truncateMessage)
	}
	sb.WriteString(strings.Join(body, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// Stat returns how many lines a unified diff adds and removes, ignoring its
// header.
func Stat(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
