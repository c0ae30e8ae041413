package edit

import (
	"fmt"
	"sort"
)

// ValidationError describes an edit whose range does not fit the text.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes two edits whose ranges overlap.
type ConflictError struct {
	First  TextEdit
	Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.StartOffset, e.First.EndOffset,
		e.Second.StartOffset, e.Second.EndOffset)
}

// Validate checks every edit range against a text of length textLen and
// returns the first problem found.
func Validate(edits []TextEdit, textLen int) error {
	for _, e := range edits {
		switch {
		case e.StartOffset < 0:
			return &ValidationError{Edit: e, Message: "start offset is negative"}
		case e.EndOffset < e.StartOffset:
			return &ValidationError{Edit: e, Message: "end offset is before start offset"}
		case e.EndOffset > textLen:
			return &ValidationError{
				Edit:    e,
				Message: fmt.Sprintf("end offset %d exceeds text length %d", e.EndOffset, textLen),
			}
		}
	}
	return nil
}

// Sort orders edits by start offset, then end offset. Insertions at the same
// offset keep their relative order.
func Sort(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].StartOffset != edits[j].StartOffset {
			return edits[i].StartOffset < edits[j].StartOffset
		}
		return edits[i].EndOffset < edits[j].EndOffset
	})
}

// DetectConflicts returns a *ConflictError for the first pair of overlapping
// edits in a sorted slice. Two insertions at the same offset also conflict,
// since their order would be ambiguous.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		overlap := curr.StartOffset < prev.EndOffset
		sameInsert := prev.StartOffset == prev.EndOffset &&
			curr.StartOffset == curr.EndOffset &&
			curr.StartOffset == prev.StartOffset
		if overlap || sameInsert {
			return &ConflictError{First: prev, Second: curr}
		}
	}
	return nil
}

// Prepare validates a copy of edits, sorts it and rejects overlaps.
func Prepare(edits []TextEdit, textLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	if err := Validate(edits, textLen); err != nil {
		return nil, err
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	Sort(sorted)

	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
