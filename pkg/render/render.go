// Package render prints an event stream as canonical Markdown.
//
// The canonical form is a fixed point: parsing the output and rendering it
// again yields the same text. Paragraphs are filled to a fixed width, lists
// use "-" and "N." markers ("*" and "N)" for a list directly following a
// sibling list of the same kind), code blocks are fenced, and blocks are
// separated by exactly one blank line except inside tight lists.
package render

import (
	"strconv"
	"strings"

	"github.com/yaklabco/mdfmt/pkg/event"
	"github.com/yaklabco/mdfmt/pkg/wrap"
)

// DefaultWidth is the paragraph fill width.
const DefaultWidth = wrap.DefaultWidth

type options struct {
	width int
}

// Option configures Render.
type Option func(*options)

// WithWidth sets the paragraph fill width. Non-positive values select
// DefaultWidth.
func WithWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
	}
}

// Render returns the canonical text for events.
//
// Constructs outside the supported subset yield an *UnsupportedError.
// Streams that break nesting rules yield an *InvariantError.
func Render(events []event.Event, opts ...Option) (string, error) {
	o := options{width: DefaultWidth}
	for _, opt := range opts {
		opt(&o)
	}

	s := &state{
		width: o.width,
		cur:   cursor{events: events},
	}

	for {
		e, ok := s.cur.next()
		if !ok {
			break
		}
		if err := s.handle(e); err != nil {
			return "", err
		}
	}

	if n := len(s.open); n > 0 {
		return "", &InvariantError{
			Index:  len(events),
			Event:  event.End(s.open[n-1]),
			Reason: "stream ended with unclosed container",
		}
	}

	return s.finish(), nil
}

type inlineContext uint8

const (
	inlineNone inlineContext = iota
	inlineParagraph
	inlineHeading
)

// closedList records the last list to end, until another block starts.
type closedList struct {
	depth   int
	ordered bool
	alt     bool
}

// frame is one open list.
type frame struct {
	ordered bool
	next    int
	tight   bool
	items   int

	// alt selects the "*" and ")" markers.
	alt bool

	// width of the current item's marker plus its separating space.
	width int
}

type state struct {
	width int
	cur   cursor
	out   strings.Builder

	// open holds the containers entered and not yet left.
	open []event.Block

	ctx     inlineContext
	buf     strings.Builder
	protect [][2]int
	delims  []string
	used    int

	// edge is set right after an emphasis delimiter is written; inText
	// while the tail of buf from textFrom is literal text.
	edge     bool
	inText   bool
	textFrom int

	inCode bool
	code   strings.Builder

	lists     []frame
	itemStart bool
	lastList  *closedList
}

func (s *state) invariant(e event.Event, reason string) error {
	return &InvariantError{Index: s.cur.index(), Event: e, Reason: reason}
}

func (s *state) parent() (event.Tag, bool) {
	if len(s.open) == 0 {
		return 0, false
	}
	return s.open[len(s.open)-1].Tag, true
}

func (s *state) handle(e event.Event) error {
	switch e.Kind {
	case event.KindStart:
		if !e.Block.Tag.Supported() {
			return &UnsupportedError{Tag: e.Block.Tag, Name: e.Block.Name}
		}
		if err := s.start(e); err != nil {
			return err
		}
		s.open = append(s.open, e.Block)
		return nil

	case event.KindEnd:
		if !e.Block.Tag.Supported() {
			return &UnsupportedError{Tag: e.Block.Tag, Name: e.Block.Name}
		}
		tag, ok := s.parent()
		if !ok || tag != e.Block.Tag {
			return s.invariant(e, "end does not match the open container")
		}
		block := s.open[len(s.open)-1]
		s.open = s.open[:len(s.open)-1]
		s.end(block)
		return nil

	case event.KindText:
		s.text(e.Text)
		return nil

	case event.KindCode:
		if s.ctx == inlineNone {
			return s.invariant(e, "inline code outside a paragraph or heading")
		}
		s.inlineCode(e.Text)
		return nil

	case event.KindSoftBreak:
		if s.ctx == inlineNone {
			return s.invariant(e, "soft break outside a paragraph or heading")
		}
		s.buf.WriteByte(' ')
		s.edge, s.inText = false, false
		return nil

	case event.KindHardBreak:
		return &UnsupportedError{Tag: event.TagUnknown, Name: "HardBreak"}

	default:
		return s.invariant(e, "unknown event kind")
	}
}

//nolint:cyclop // One case per supported tag.
func (s *state) start(e event.Event) error {
	parent, hasParent := s.parent()

	switch e.Block.Tag {
	case event.TagParagraph, event.TagHeading, event.TagCodeBlock, event.TagList:
		if hasParent && parent != event.TagListItem {
			return s.invariant(e, "block opened inside "+parent.String())
		}
	case event.TagListItem:
		if !hasParent || parent != event.TagList {
			return s.invariant(e, "list item outside a list")
		}
	case event.TagEmphasis, event.TagStrong:
		if s.ctx == inlineNone {
			return s.invariant(e, "emphasis outside a paragraph or heading")
		}
	}

	switch e.Block.Tag {
	case event.TagParagraph:
		s.beginBlock()
		s.ctx = inlineParagraph
		s.used = wrap.Width(s.currentLine())

	case event.TagHeading:
		if e.Block.Level < 1 || e.Block.Level > 6 {
			return s.invariant(e, "heading level out of range")
		}
		s.beginBlock()
		s.out.WriteString(strings.Repeat("#", e.Block.Level))
		s.ctx = inlineHeading

	case event.TagCodeBlock:
		s.beginBlock()
		s.inCode = true

	case event.TagList:
		f := frame{
			ordered: e.Block.Ordered,
			next:    e.Block.Start,
			tight:   e.Block.Tight,
		}
		// Sibling lists of the same kind stay apart only through a
		// different marker.
		if prev := s.lastList; prev != nil && prev.depth == len(s.lists) && prev.ordered == f.ordered {
			f.alt = !prev.alt
		}
		s.lastList = nil
		s.lists = append(s.lists, f)

	case event.TagListItem:
		s.beginItem()

	case event.TagEmphasis:
		s.openDelimiter("*")

	case event.TagStrong:
		s.openDelimiter("**")

	default:
		return &UnsupportedError{Tag: e.Block.Tag, Name: e.Block.Name}
	}

	return nil
}

func (s *state) end(block event.Block) {
	switch block.Tag {
	case event.TagParagraph:
		s.out.WriteString(wrap.Fill(s.buf.String(), wrap.Options{
			Width:   s.width,
			Used:    s.used,
			Indent:  s.indent(len(s.lists)),
			Protect: s.protect,
		}))
		s.out.WriteByte('\n')
		s.resetInline()

	case event.TagHeading:
		if text := strings.Trim(s.buf.String(), " "); text != "" {
			s.out.WriteByte(' ')
			s.out.WriteString(escapeClosingSequence(text))
		}
		s.out.WriteByte('\n')
		s.resetInline()

	case event.TagCodeBlock:
		s.writeCodeBlock(block.Info)
		s.inCode = false
		s.code.Reset()

	case event.TagList:
		f := s.lists[len(s.lists)-1]
		s.lists = s.lists[:len(s.lists)-1]
		s.lastList = &closedList{depth: len(s.lists), ordered: f.ordered, alt: f.alt}

	case event.TagListItem:
		s.itemStart = false
		s.ensureNewline()
		if !s.lists[len(s.lists)-1].tight && !s.nextEndsList() {
			s.out.WriteByte('\n')
		}

	case event.TagEmphasis, event.TagStrong:
		s.escapeTextTail()
		n := len(s.delims)
		s.buf.WriteString(s.delims[n-1])
		s.delims = s.delims[:n-1]
		s.edge, s.inText = true, false
	}
}

func (s *state) nextEndsList() bool {
	next, ok := s.cur.peek()
	return ok && next.Kind == event.KindEnd && next.Block.Tag == event.TagList
}

func (s *state) text(text string) {
	switch {
	case s.inCode:
		s.code.WriteString(text)
	case s.ctx != inlineNone:
		text = strings.ReplaceAll(text, "\n", " ")
		if s.edge {
			text = escapeDelimiterRun(text, 0)
		}
		if !s.inText {
			s.inText, s.textFrom = true, s.buf.Len()
		}
		s.buf.WriteString(text)
		s.edge = false
	default:
		if s.itemStart {
			s.out.WriteByte(' ')
			s.itemStart = false
		}
		s.out.WriteString(text)
	}
}

func (s *state) resetInline() {
	s.ctx = inlineNone
	s.buf.Reset()
	s.protect = nil
	s.delims = nil
	s.used = 0
	s.edge, s.inText = false, false
}

// beginBlock writes the separator and indentation that precede a block.
func (s *state) beginBlock() {
	s.lastList = nil
	if s.itemStart {
		s.out.WriteByte(' ')
		s.itemStart = false
		return
	}
	s.ensureNewline()
	if s.out.Len() > 0 && s.blankLineIn(len(s.lists)-1) {
		s.out.WriteByte('\n')
	}
	s.out.WriteString(s.indent(len(s.lists)))
}

// beginItem writes the marker of a new item in the innermost list.
func (s *state) beginItem() {
	depth := len(s.lists)
	f := &s.lists[depth-1]
	s.lastList = nil

	var marker string
	switch {
	case f.ordered && f.alt:
		marker = strconv.Itoa(f.next) + ")"
	case f.ordered:
		marker = strconv.Itoa(f.next) + "."
	case f.alt:
		marker = "*"
	default:
		marker = "-"
	}
	if f.ordered {
		f.next++
	}

	switch {
	case s.itemStart:
		// A list that is the first block of its parent item.
		s.out.WriteByte(' ')
	case f.items == 0:
		s.ensureNewline()
		if s.out.Len() > 0 && s.blankLineIn(depth-2) {
			s.out.WriteByte('\n')
		}
		s.out.WriteString(s.indent(depth - 1))
	default:
		s.ensureNewline()
		s.out.WriteString(s.indent(depth - 1))
	}

	s.out.WriteString(marker)
	f.width = len(marker) + 1
	f.items++
	s.itemStart = true
}

// blankLineIn reports whether blocks directly inside the list at index i are
// separated by a blank line. Index -1 is the document itself.
func (s *state) blankLineIn(i int) bool {
	if i < 0 {
		return true
	}
	return !s.lists[i].tight
}

func (s *state) indent(depth int) string {
	n := 0
	for _, f := range s.lists[:depth] {
		n += f.width
	}
	return strings.Repeat(" ", n)
}

func (s *state) ensureNewline() {
	out := s.out.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		s.out.WriteByte('\n')
	}
}

func (s *state) currentLine() string {
	out := s.out.String()
	return out[strings.LastIndexByte(out, '\n')+1:]
}

// openDelimiter writes an emphasis opener. Directly after another '*' the
// underscore form is used so the two runs are not read as one.
func (s *state) openDelimiter(delim string) {
	s.escapeTextTail()
	if strings.HasSuffix(s.buf.String(), "*") {
		delim = strings.Repeat("_", len(delim))
	}
	s.delims = append(s.delims, delim)
	s.buf.WriteString(delim)
	s.edge, s.inText = true, false
}

// escapeTextTail escapes the literal '*' and '_' that end the current text
// run, so they cannot join the delimiter written next.
func (s *state) escapeTextTail() {
	if !s.inText {
		return
	}
	buf := s.buf.String()
	tail := buf[s.textFrom:]

	i := len(tail)
	for i > 0 && isDelimiter(tail[i-1]) {
		i--
	}
	// The first character of the run may already be escaped.
	if i < len(tail) && i > 0 && oddBackslashes(tail[:i]) {
		i++
	}
	if i == len(tail) {
		return
	}

	s.buf.Reset()
	s.buf.WriteString(buf[:s.textFrom])
	s.buf.WriteString(escapeDelimiterRun(tail, i))
}

// escapeDelimiterRun backslash-escapes the run of '*' and '_' starting at
// text[from].
func escapeDelimiterRun(text string, from int) string {
	end := from
	for end < len(text) && isDelimiter(text[end]) {
		end++
	}
	if end == from {
		return text
	}

	var b strings.Builder
	b.WriteString(text[:from])
	for i := from; i < end; i++ {
		b.WriteByte('\\')
		b.WriteByte(text[i])
	}
	b.WriteString(text[end:])
	return b.String()
}

func isDelimiter(c byte) bool {
	return c == '*' || c == '_'
}

func oddBackslashes(s string) bool {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n%2 == 1
}

// escapeClosingSequence escapes a trailing run of '#' that a parser would
// take for the closing sequence of an ATX heading.
func escapeClosingSequence(text string) string {
	i := len(text)
	for i > 0 && text[i-1] == '#' {
		i--
	}
	if i == len(text) || (i > 0 && text[i-1] != ' ') {
		return text
	}
	return text[:i] + "\\" + text[i:]
}

func (s *state) inlineCode(code string) {
	code = strings.ReplaceAll(code, "\n", " ")
	if code == "" {
		return
	}

	delim := strings.Repeat("`", longestRun(code, '`')+1)
	pad := strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") ||
		(code[0] == ' ' && code[len(code)-1] == ' ' && strings.Trim(code, " ") != "")

	s.edge, s.inText = false, false
	start := s.buf.Len()
	s.buf.WriteString(delim)
	if pad {
		s.buf.WriteByte(' ')
	}
	s.buf.WriteString(code)
	if pad {
		s.buf.WriteByte(' ')
	}
	s.buf.WriteString(delim)
	s.protect = append(s.protect, [2]int{start, s.buf.Len()})
}

func (s *state) writeCodeBlock(info string) {
	content := s.code.String()

	fenceChar := byte('`')
	if strings.ContainsRune(info, '`') {
		fenceChar = '~'
	}
	fence := strings.Repeat(string(fenceChar), max(3, longestRun(content, fenceChar)+1))
	indent := s.indent(len(s.lists))

	s.out.WriteString(fence)
	if fenceChar == '~' && strings.HasPrefix(info, "~") {
		s.out.WriteByte(' ')
	}
	s.out.WriteString(info)
	s.out.WriteByte('\n')

	if content != "" {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		for _, line := range strings.SplitAfter(content, "\n") {
			if line == "" {
				continue
			}
			if line != "\n" {
				s.out.WriteString(indent)
			}
			s.out.WriteString(line)
		}
	}

	s.out.WriteString(indent)
	s.out.WriteString(fence)
	s.out.WriteByte('\n')
}

func (s *state) finish() string {
	out := strings.TrimRight(s.out.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := range len(s) {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
