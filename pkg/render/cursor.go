package render

import "github.com/yaklabco/mdfmt/pkg/event"

// cursor yields events in order with one event of lookahead.
type cursor struct {
	events []event.Event
	pos    int
}

func (c *cursor) next() (event.Event, bool) {
	if c.pos >= len(c.events) {
		return event.Event{}, false
	}
	e := c.events[c.pos]
	c.pos++
	return e, true
}

func (c *cursor) peek() (event.Event, bool) {
	if c.pos >= len(c.events) {
		return event.Event{}, false
	}
	return c.events[c.pos], true
}

// index returns the position of the event last returned by next.
func (c *cursor) index() int {
	return c.pos - 1
}
