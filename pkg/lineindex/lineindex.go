// Package lineindex converts between byte offsets in a text and the
// (line, column) positions used by the Language Server Protocol.
//
// Lines are 0-based and split on '\n'. Columns are 0-based and counted in
// UTF-16 code units, so a character outside the Basic Multilingual Plane
// occupies two columns.
package lineindex

import (
	"sort"
	"unicode/utf8"
)

// LineCol is a 0-based line and UTF-16 column.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Index holds the byte offset of every line start in a text.
// An Index is immutable once built and safe for concurrent use.
type Index struct {
	text   string
	starts []int
}

// New builds the index for text.
// The first line always starts at offset 0, so an empty text has one line.
func New(text string) *Index {
	starts := make([]int, 1, 1+len(text)/40)
	for idx := 0; idx < len(text); idx++ {
		if text[idx] == '\n' {
			starts = append(starts, idx+1)
		}
	}
	return &Index{text: text, starts: starts}
}

// Len returns the length in bytes of the indexed text.
func (i *Index) Len() int {
	return len(i.text)
}

// LineCount returns the number of lines. A trailing newline opens a final
// empty line.
func (i *Index) LineCount() int {
	return len(i.starts)
}

// LineStart returns the byte offset where the 0-based line begins, and false
// if the line does not exist.
func (i *Index) LineStart(line int) (int, bool) {
	if line < 0 || line >= len(i.starts) {
		return 0, false
	}
	return i.starts[line], true
}

// LineCol converts a byte offset to a line and UTF-16 column.
// Offsets are clamped to [0, Len()].
func (i *Index) LineCol(offset int) LineCol {
	offset = max(0, min(offset, len(i.text)))

	// Greatest line whose start is <= offset.
	line := sort.Search(len(i.starts), func(n int) bool {
		return i.starts[n] > offset
	}) - 1

	return LineCol{
		Line: uint32(line),
		Col:  uint32(UTF16Len(i.text[i.starts[line]:offset])),
	}
}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
// Invalid UTF-8 bytes count as one unit each (U+FFFD).
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

func utf16Width(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
