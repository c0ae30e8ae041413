package protocol

import (
	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/lineindex"
)

// PositionAt converts a byte offset into an LSP position using idx.
// Offsets past the end of the text clamp to the end.
func PositionAt(idx *lineindex.Index, offset int) Position {
	lc := idx.LineCol(offset)
	return Position{Line: lc.Line, Character: lc.Col}
}

// RangeOf converts the byte range [start, end) into an LSP range.
func RangeOf(idx *lineindex.Index, start, end int) Range {
	return Range{
		Start: PositionAt(idx, start),
		End:   PositionAt(idx, end),
	}
}

// TextEditOf converts one byte-offset edit. idx must index the text the edit
// was computed against.
func TextEditOf(idx *lineindex.Index, e edit.TextEdit) TextEdit {
	return TextEdit{
		Range:   RangeOf(idx, e.StartOffset, e.EndOffset),
		NewText: e.NewText,
	}
}

// TextEdits converts edits in order. It returns nil for no edits.
func TextEdits(idx *lineindex.Index, edits []edit.TextEdit) []TextEdit {
	if len(edits) == 0 {
		return nil
	}
	out := make([]TextEdit, len(edits))
	for i, e := range edits {
		out[i] = TextEditOf(idx, e)
	}
	return out
}

