// Package wrap fills paragraph text to a fixed display width.
//
// Text is broken only at runs of ASCII spaces. Widths are measured in
// terminal display columns, so wide East Asian characters count as two.
// Words longer than the width are never split; they overflow on a line of
// their own.
package wrap

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the line width used when Options.Width is not positive.
const DefaultWidth = 80

//nolint:gochecknoglobals // Read-only width table shared by all calls.
var cond = newCondition()

func newCondition() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}

// Options controls Fill.
type Options struct {
	// Width is the maximum display width of a line, indentation included.
	Width int

	// Used is the number of columns already occupied on the first line
	// (for example by a list marker written by the caller).
	Used int

	// Indent prefixes every line after the first.
	Indent string

	// Protect lists byte ranges [start, end) of the text whose spaces are
	// not break opportunities, such as inline code spans.
	Protect [][2]int
}

// Width returns the display width of s.
func Width(s string) int {
	return cond.StringWidth(s)
}

// word is a run of non-space bytes and the separator that followed it.
type word struct {
	text  string
	space string
}

func split(text string, protect [][2]int) []word {
	breakable := func(i int) bool {
		for _, r := range protect {
			if i >= r[0] && i < r[1] {
				return false
			}
		}
		return true
	}

	var words []word
	pos := 0
	for pos < len(text) && text[pos] == ' ' && breakable(pos) {
		pos++
	}

	start := pos
	for pos < len(text) {
		if text[pos] != ' ' || !breakable(pos) {
			pos++
			continue
		}
		spaceEnd := pos
		for spaceEnd < len(text) && text[spaceEnd] == ' ' && breakable(spaceEnd) {
			spaceEnd++
		}
		// A breakable run reads as one space, so it is written as one.
		words = append(words, word{text: text[start:pos], space: " "})
		pos = spaceEnd
		start = pos
	}
	if start < len(text) {
		words = append(words, word{text: text[start:]})
	}

	// Trailing spaces carry no content.
	if n := len(words); n > 0 {
		words[n-1].space = ""
	}
	return words
}

// Lines breaks text into lines. The first line carries no prefix; every other
// line starts with opts.Indent. Leading and trailing spaces are dropped, runs
// of spaces between words become a single space, and the space at a line
// break is consumed by the break. Spaces inside a
// protected range never start a new line, and no line after the first begins
// with a block marker or ends with a backslash.
func Lines(text string, opts Options) []string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	words := split(text, opts.Protect)
	if len(words) == 0 {
		return []string{""}
	}

	words = glue(words)
	indentWidth := Width(opts.Indent)

	// Greedy fill: each line is a slice of words.
	var lines [][]word
	var current []word
	col := opts.Used

	for _, w := range words {
		ww := Width(w.text)
		if len(current) == 0 {
			current = append(current, w)
			col += ww
			continue
		}

		prev := current[len(current)-1]
		if col+Width(prev.space)+ww <= width {
			current = append(current, w)
			col += Width(prev.space) + ww
			continue
		}

		lines = append(lines, current)
		current = []word{w}
		col = indentWidth + ww
	}
	lines = append(lines, current)

	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		if i > 0 {
			b.WriteString(opts.Indent)
		}
		for j, w := range line {
			b.WriteString(w.text)
			if j < len(line)-1 {
				b.WriteString(w.space)
			}
		}
		out[i] = b.String()
	}
	return out
}

// Fill is Lines joined with newlines.
func Fill(text string, opts Options) string {
	return strings.Join(Lines(text, opts), "\n")
}

// glue joins words across spaces that must not become line breaks: before a
// token that would open a block at the start of a line, and after a word
// ending in a backslash (a hard break when it ends a line).
func glue(words []word) []word {
	out := words[:0:0]
	for _, w := range words {
		n := len(out)
		if n > 0 && (startsBlock(w.text) || strings.HasSuffix(out[n-1].text, `\`)) {
			out[n-1].text += out[n-1].space + w.text
			out[n-1].space = w.space
			continue
		}
		out = append(out, w)
	}
	return out
}

// startsBlock reports whether a line beginning with tok could be parsed as
// something other than paragraph continuation text.
func startsBlock(tok string) bool {
	if tok == "" {
		return false
	}

	switch tok[0] {
	case '>', '<':
		return true
	case '#':
		return len(strings.TrimLeft(tok, "#")) == 0 && len(tok) <= 6
	case '-', '+', '*', '_', '=':
		// Bullets, setext underlines, thematic breaks and delimiter rows.
		return strings.Trim(tok, tok[:1]) == "" ||
			(tok[0] == '-' && strings.Trim(tok, "|-:") == "")
	case '`', '~':
		return strings.HasPrefix(tok, strings.Repeat(tok[:1], 3))
	case '|', ':':
		// Possible table delimiter row.
		return strings.Trim(tok, "|-:") == ""
	}

	// Ordered list marker: up to nine digits followed by '.' or ')'.
	digits := 0
	for digits < len(tok) && tok[digits] >= '0' && tok[digits] <= '9' {
		digits++
	}
	return digits > 0 && digits <= 9 && digits == len(tok)-1 &&
		(tok[digits] == '.' || tok[digits] == ')')
}
