// Package diff renders before/after text as unified diffs and wraps them in
// a git-style envelope that patch tools accept.
package diff

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines around each hunk
const ContextLines = 3

// MaxDiffLines bounds how much of a diff reports embed
const MaxDiffLines = 500

// Unified returns the unified diff turning before into after. Identical
// inputs produce an empty string.
func Unified(before, after, fromFile, toFile string) (string, error) {
	if before == after {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  ContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("computing diff %s: %w", toFile, err)
	}
	return text, nil
}

// Envelope wraps the diff of before/after in a git header for path, so the
// result can be fed to `git apply`. It returns "" when nothing changed.
func Envelope(path, before, after string) (string, error) {
	body, err := Unified(before, after, "a/"+path, "b/"+path)
	if err != nil || body == "" {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	b.WriteString("index 0000000..1111111 100644\n")
	b.WriteString(body)
	return b.String(), nil
}

// Stat counts added and removed lines in a unified diff. Lines before the
// first hunk are file headers and are not counted.
func Stat(unified string) (added, removed int) {
	s := bufio.NewScanner(strings.NewReader(unified))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inHunk := false
	for s.Scan() {
		line := s.Text()
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// Truncate limits a diff to MaxDiffLines lines for display
func Truncate(unified string) string {
	lines := strings.Split(unified, "\n")
	if len(lines) <= MaxDiffLines {
		return unified
	}
	return strings.Join(lines[:MaxDiffLines], "\n") + "\n... [truncated]"
}
