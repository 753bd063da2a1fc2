// Package docdiff computes line diffs between the canonical JSON forms of
// two documents.
package docdiff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the type of a diff line.
type Op int

// Diff line types.
const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of a diff, without its trailing newline.
type Line struct {
	Op   Op
	Text string
}

// Lines diffs a and b line by line.
func Lines(a, b string) []Line {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			out = append(out, Line{Op: op, Text: strings.TrimSuffix(text, "\n")})
		}
	}
	return out
}

// Documents diffs the indented JSON encodings of a and b. Object keys of
// typed documents keep struct order, so equal documents diff to no changes.
func Documents(a, b any) ([]Line, error) {
	ja, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("docdiff: encode first document: %w", err)
	}
	jb, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("docdiff: encode second document: %w", err)
	}
	return Lines(string(ja)+"\n", string(jb)+"\n"), nil
}

// Changed reports whether any line was inserted or deleted.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// Hunk is a run of lines around changes, with unchanged lines trimmed to
// the requested context.
type Hunk []Line

// Hunks groups lines into hunks keeping at most context unchanged lines
// before and after each change. Runs of unchanged lines longer than that
// separate hunks.
func Hunks(lines []Line, context int) []Hunk {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var hunks []Hunk
	var cur Hunk
	for i, l := range lines {
		if !keep[i] {
			if cur != nil {
				hunks = append(hunks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if cur != nil {
		hunks = append(hunks, cur)
	}
	return hunks
}
