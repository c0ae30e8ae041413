package edit

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func newDiffer() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	// No deadline: a timed-out diff is valid but not minimal, and the result
	// must not depend on machine speed.
	dmp.DiffTimeout = 0
	return dmp
}

// Diff returns the edits that turn original into modified, in ascending
// offset order with no overlaps. Applying them to original with Apply yields
// modified exactly. Equal inputs produce nil.
//
// Adjacent deletions and insertions are merged into a single replacement.
// Offsets are byte offsets into original.
func Diff(original, modified string) []TextEdit {
	if original == modified {
		return nil
	}

	// The character diff works on runes; invalid UTF-8 would not map back to
	// byte offsets.
	if !utf8.ValidString(original) || !utf8.ValidString(modified) {
		return []TextEdit{{StartOffset: 0, EndOffset: len(original), NewText: modified}}
	}

	diffs := newDiffer().DiffMain(original, modified, false)

	b := NewBuilder()
	var pending *TextEdit
	offset := 0

	flush := func() {
		if pending != nil {
			b.Replace(pending.StartOffset, pending.EndOffset, pending.NewText)
			pending = nil
		}
	}
	open := func() {
		if pending == nil {
			pending = &TextEdit{StartOffset: offset, EndOffset: offset}
		}
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			offset += len(d.Text)
		case diffmatchpatch.DiffDelete:
			open()
			offset += len(d.Text)
			pending.EndOffset = offset
		case diffmatchpatch.DiffInsert:
			open()
			pending.NewText += d.Text
		}
	}
	flush()

	return b.Edits()
}
