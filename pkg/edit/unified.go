package edit

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// LineOp classifies a line of a unified diff.
type LineOp int

const (
	// LineContext is a line present in both texts.
	LineContext LineOp = iota
	// LineAdded is a line present only in the modified text.
	LineAdded
	// LineRemoved is a line present only in the original text.
	LineRemoved
)

// Line is one line of a hunk, without its newline.
type Line struct {
	Op   LineOp
	Text string
}

// Hunk is a contiguous region of change plus surrounding context.
// Start lines are 1-based.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Unified is a line-oriented diff between an original and a modified text.
type Unified struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// GenerateDiff returns the unified diff of original and modified, or nil when
// they are equal.
func GenerateDiff(path, original, modified string) *Unified {
	if original == modified {
		return nil
	}

	ops := lineOps(original, modified)
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	u := &Unified{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.Op {
		case LineAdded:
			u.Additions++
		case LineRemoved:
			u.Deletions++
		case LineContext:
		}
	}
	return u
}

// HasChanges reports whether the diff contains any hunk.
func (u *Unified) HasChanges() bool {
	return u != nil && len(u.Hunks) > 0
}

// String renders the diff in unified format with a/ and b/ path prefixes.
func (u *Unified) String() string {
	if !u.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(u.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range u.Hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", hunkRange(h.OldStart, h.OldLines), hunkRange(h.NewStart, h.NewLines))
		for _, line := range h.Lines {
			switch line.Op {
			case LineContext:
				b.WriteByte(' ')
			case LineAdded:
				b.WriteByte('+')
			case LineRemoved:
				b.WriteByte('-')
			}
			b.WriteString(line.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hunkRange(start, count int) string {
	if count == 0 {
		// An empty range names the line before it.
		return fmt.Sprintf("%d,0", start-1)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// lineOps diffs the two texts line by line.
func lineOps(original, modified string) []Line {
	dmp := newDiffer()
	a, b, lines := dmp.DiffLinesToRunes(original, modified)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)

	var ops []Line
	for _, d := range diffs {
		op := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = LineAdded
		case diffmatchpatch.DiffDelete:
			op = LineRemoved
		case diffmatchpatch.DiffEqual:
		}
		for _, text := range splitLines(d.Text) {
			ops = append(ops, Line{Op: op, Text: text})
		}
	}
	return ops
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// groupHunks cuts the op sequence into hunks, joining changes separated by
// at most twice the context size.
func groupHunks(ops []Line) []Hunk {
	var hunks []Hunk

	pos := 0
	for pos < len(ops) {
		for pos < len(ops) && ops[pos].Op == LineContext {
			pos++
		}
		if pos == len(ops) {
			break
		}

		start := max(0, pos-contextLines)
		end := pos
		for {
			for end < len(ops) && ops[end].Op != LineContext {
				end++
			}
			run := end
			for run < len(ops) && ops[run].Op == LineContext {
				run++
			}
			if run == len(ops) || run-end > 2*contextLines {
				break
			}
			end = run
		}
		stop := min(len(ops), end+contextLines)

		hunks = append(hunks, newHunk(ops, start, stop))
		pos = stop
	}
	return hunks
}

func newHunk(ops []Line, start, stop int) Hunk {
	h := Hunk{OldStart: 1, NewStart: 1}
	for _, op := range ops[:start] {
		if op.Op != LineAdded {
			h.OldStart++
		}
		if op.Op != LineRemoved {
			h.NewStart++
		}
	}

	h.Lines = append(h.Lines, ops[start:stop]...)
	for _, op := range h.Lines {
		if op.Op != LineAdded {
			h.OldLines++
		}
		if op.Op != LineRemoved {
			h.NewLines++
		}
	}
	return h
}
