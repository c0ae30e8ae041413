package edit_test

import (
	"testing"

	"github.com/yaklabco/mdfmt/pkg/edit"
)

func FuzzDiff_RoundTrip(f *testing.F) {
	f.Add("", "")
	f.Add("hello", "world")
	f.Add("a\nb\nc\n", "a\nx\nc\n")
	f.Add("* one\n* two\n", "- one\n- two\n")
	f.Add("é中😀", "😀中é")
	f.Add("a\xffb", "ab")

	f.Fuzz(func(t *testing.T, original, modified string) {
		edits := edit.Diff(original, modified)

		if original == modified && edits != nil {
			t.Fatalf("equal inputs produced edits: %+v", edits)
		}

		if _, err := edit.Prepare(edits, len(original)); err != nil {
			t.Fatalf("edits not valid: %v", err)
		}

		if got := edit.Apply(original, edits); got != modified {
			t.Fatalf("Apply(Diff) = %q, want %q", got, modified)
		}
	})
}

func FuzzGenerateDiff(f *testing.F) {
	f.Add("", "")
	f.Add("hello\n", "hello\n")
	f.Add("a\nb\nc\n", "a\nx\nc\n")
	f.Add("line1\nline2\n", "line1\nline2\nline3\n")
	f.Add("a\nb\nc\nd\ne\n", "a\nB\nc\nD\ne\n")

	f.Fuzz(func(t *testing.T, original, modified string) {
		d := edit.GenerateDiff("test.md", original, modified)
		if d == nil {
			return
		}

		_ = d.String()

		for i, h := range d.Hunks {
			if h.OldStart < 1 || h.NewStart < 1 {
				t.Errorf("hunk %d: starts must be 1-based: %+v", i, h)
			}

			var ctx, add, rem int
			for _, line := range h.Lines {
				switch line.Op {
				case edit.LineContext:
					ctx++
				case edit.LineAdded:
					add++
				case edit.LineRemoved:
					rem++
				}
			}
			if ctx+rem != h.OldLines || ctx+add != h.NewLines {
				t.Errorf("hunk %d: line counts inconsistent with header", i)
			}
		}
	})
}
