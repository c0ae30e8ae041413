package render

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdfmt/pkg/event"
)

var (
	// ErrUnsupported is matched by errors for constructs the renderer does
	// not format.
	ErrUnsupported = errors.New("unsupported markdown construct")

	// ErrMalformedEvents is matched by errors for event streams that violate
	// the renderer's nesting rules. It indicates a bug in the producer.
	ErrMalformedEvents = errors.New("malformed event stream")
)

// UnsupportedError reports a construct outside the supported subset.
type UnsupportedError struct {
	Tag  event.Tag
	Name string
}

func (e *UnsupportedError) Error() string {
	name := e.Name
	if name == "" {
		name = e.Tag.String()
	}
	return fmt.Sprintf("unsupported markdown construct: %s", name)
}

// Is makes errors.Is(err, ErrUnsupported) match.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// InvariantError reports an event that is not valid in the current state.
type InvariantError struct {
	Index  int
	Event  event.Event
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("event %d (%s): %s", e.Index, e.Event, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedEvents) match.
func (e *InvariantError) Is(target error) bool {
	return target == ErrMalformedEvents
}
