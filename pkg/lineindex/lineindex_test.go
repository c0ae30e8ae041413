package lineindex_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yaklabco/mdfmt/pkg/lineindex"
)

func TestNew_LineStarts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		starts []int
	}{
		{"empty", "", []int{0}},
		{"single line", "hello", []int{0}},
		{"trailing newline", "hello\n", []int{0, 6}},
		{"multiple lines", "a\nbb\nccc", []int{0, 2, 5}},
		{"blank lines", "\n\n", []int{0, 1, 2}},
		{"crlf keeps cr on the line", "a\r\nb", []int{0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idx := lineindex.New(tt.text)
			if idx.LineCount() != len(tt.starts) {
				t.Fatalf("LineCount() = %d, want %d", idx.LineCount(), len(tt.starts))
			}
			for line, want := range tt.starts {
				got, ok := idx.LineStart(line)
				if !ok || got != want {
					t.Errorf("LineStart(%d) = %d, %v; want %d, true", line, got, ok, want)
				}
			}
			if _, ok := idx.LineStart(len(tt.starts)); ok {
				t.Error("LineStart past last line should report false")
			}
		})
	}
}

func TestIndex_LineCol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		offset int
		want   lineindex.LineCol
	}{
		{"start of text", "hello\nworld", 0, lineindex.LineCol{Line: 0, Col: 0}},
		{"middle of first line", "hello\nworld", 3, lineindex.LineCol{Line: 0, Col: 3}},
		{"on the newline", "hello\nworld", 5, lineindex.LineCol{Line: 0, Col: 5}},
		{"start of second line", "hello\nworld", 6, lineindex.LineCol{Line: 1, Col: 0}},
		{"end of text", "hello\nworld", 11, lineindex.LineCol{Line: 1, Col: 5}},
		{"after trailing newline", "hello\n", 6, lineindex.LineCol{Line: 1, Col: 0}},
		{"clamps past end", "hi", 99, lineindex.LineCol{Line: 0, Col: 2}},
		{"clamps negative", "hi", -4, lineindex.LineCol{Line: 0, Col: 0}},
		// 'é' is two bytes but one UTF-16 unit.
		{"two byte rune", "é!", 2, lineindex.LineCol{Line: 0, Col: 1}},
		// '中' is three bytes, one unit.
		{"three byte rune", "中文", 6, lineindex.LineCol{Line: 0, Col: 2}},
		// '😀' is four bytes, a surrogate pair.
		{"astral rune", "a😀b", 5, lineindex.LineCol{Line: 0, Col: 3}},
		{"astral on later line", "x\n😀😀", 10, lineindex.LineCol{Line: 1, Col: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := lineindex.New(tt.text).LineCol(tt.offset)
			if got != tt.want {
				t.Errorf("LineCol(%d) = %+v, want %+v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestUTF16Len(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 5},
		{"😀", 2},
		{"\xff", 1},
	}
	for _, tt := range tests {
		if got := lineindex.UTF16Len(tt.in); got != tt.want {
			t.Errorf("UTF16Len(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func FuzzIndex_LineCol(f *testing.F) {
	f.Add("")
	f.Add("hello\nworld\n")
	f.Add("a😀b\n\n中文")
	f.Add(strings.Repeat("x\n", 20))

	f.Fuzz(func(t *testing.T, text string) {
		if !utf8.ValidString(text) {
			t.Skip()
		}
		idx := lineindex.New(text)
		if idx.LineCount() != strings.Count(text, "\n")+1 {
			t.Fatalf("LineCount() = %d for %d newlines", idx.LineCount(), strings.Count(text, "\n"))
		}
		for offset := range len(text) + 1 {
			if offset < len(text) && !utf8.RuneStart(text[offset]) {
				continue
			}
			pos := idx.LineCol(offset)
			start, ok := idx.LineStart(int(pos.Line))
			if !ok || start > offset {
				t.Fatalf("offset %d mapped to line %d starting at %d", offset, pos.Line, start)
			}
			if strings.Contains(text[start:offset], "\n") {
				t.Fatalf("offset %d mapped to line %d but a newline follows its start", offset, pos.Line)
			}
			if want := uint32(lineindex.UTF16Len(text[start:offset])); pos.Col != want {
				t.Fatalf("LineCol(%d).Col = %d, want %d", offset, pos.Col, want)
			}
		}
	})
}
