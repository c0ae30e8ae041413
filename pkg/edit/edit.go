// Package edit describes byte-range replacements of a text and computes the
// minimal set of them that turns one text into another.
package edit

// TextEdit replaces bytes [StartOffset, EndOffset) of a text with NewText.
// An empty range is an insertion; an empty NewText is a deletion.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// Builder accumulates edits in the order they are added.
type Builder struct {
	edits []TextEdit
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Replace adds an edit that replaces bytes [start, end) with text.
func (b *Builder) Replace(start, end int, text string) {
	b.edits = append(b.edits, TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     text,
	})
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Delete adds an edit that removes bytes [start, end).
func (b *Builder) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Len returns the number of edits added so far.
func (b *Builder) Len() int {
	return len(b.edits)
}

// Edits returns the accumulated edits, or nil when there are none.
func (b *Builder) Edits() []TextEdit {
	if len(b.edits) == 0 {
		return nil
	}
	out := make([]TextEdit, len(b.edits))
	copy(out, b.edits)
	return out
}
