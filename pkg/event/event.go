// Package event turns Markdown source into a flat, ordered stream of
// structural events: block and inline Start/End markers, text runs, inline
// code spans and line breaks.
//
// The stream is what the canonical renderer consumes. Every construct the
// parser recognizes has a Tag, including the ones the renderer does not
// support, so consumers can handle the full set explicitly.
package event

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variants of Event.
type Kind uint8

const (
	// KindStart opens a block or inline container described by Event.Block.
	KindStart Kind = iota
	// KindEnd closes the container opened by the matching KindStart.
	KindEnd
	// KindText is a run of literal text in Event.Text.
	KindText
	// KindCode is an inline code span whose content is Event.Text.
	KindCode
	// KindSoftBreak is a line ending inside a paragraph.
	KindSoftBreak
	// KindHardBreak is a forced line break.
	KindHardBreak
)

var kindNames = [...]string{
	KindStart:     "Start",
	KindEnd:       "End",
	KindText:      "Text",
	KindCode:      "Code",
	KindSoftBreak: "SoftBreak",
	KindHardBreak: "HardBreak",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Tag identifies the container a Start/End pair delimits.
type Tag uint8

// Supported tags come first; everything from TagBlockQuote on is a construct
// the renderer rejects.
const (
	TagParagraph Tag = iota
	TagHeading
	TagCodeBlock
	TagList
	TagListItem
	TagEmphasis
	TagStrong

	TagBlockQuote
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
	TagFootnoteDefinition
	TagFootnoteReference
	TagStrikethrough
	TagLink
	TagImage
	TagHTML
	TagRule
	TagTaskListMarker
	TagUnknown
)

var tagNames = [...]string{
	TagParagraph:          "Paragraph",
	TagHeading:            "Heading",
	TagCodeBlock:          "CodeBlock",
	TagList:               "List",
	TagListItem:           "ListItem",
	TagEmphasis:           "Emphasis",
	TagStrong:             "Strong",
	TagBlockQuote:         "BlockQuote",
	TagTable:              "Table",
	TagTableHead:          "TableHead",
	TagTableRow:           "TableRow",
	TagTableCell:          "TableCell",
	TagFootnoteDefinition: "FootnoteDefinition",
	TagFootnoteReference:  "FootnoteReference",
	TagStrikethrough:      "Strikethrough",
	TagLink:               "Link",
	TagImage:              "Image",
	TagHTML:               "Html",
	TagRule:               "Rule",
	TagTaskListMarker:     "TaskListMarker",
	TagUnknown:            "Unknown",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Block describes a container. Only the fields relevant to Tag are set.
type Block struct {
	Tag Tag

	// Level is the heading level, 1 through 6.
	Level int

	// Info is the code block info string (language identifier and any
	// trailing attributes). Empty for indented code blocks.
	Info string

	// Ordered, Start and Tight describe a list. Start is the first item's
	// number and is meaningful only when Ordered is true.
	Ordered bool
	Start   int
	Tight   bool

	// Name is the parser's node name for TagUnknown and other unsupported
	// constructs, used in error messages.
	Name string
}

func (b Block) String() string {
	switch b.Tag {
	case TagHeading:
		return fmt.Sprintf("Heading(%d)", b.Level)
	case TagCodeBlock:
		return fmt.Sprintf("CodeBlock(%q)", b.Info)
	case TagList:
		if b.Ordered {
			return fmt.Sprintf("List(%d)", b.Start)
		}
		return "List(None)"
	case TagUnknown:
		return "Unknown(" + b.Name + ")"
	default:
		return b.Tag.String()
	}
}

// Event is one element of the stream.
type Event struct {
	Kind  Kind
	Block Block
	Text  string
}

func (e Event) String() string {
	switch e.Kind {
	case KindStart, KindEnd:
		return e.Kind.String() + "(" + e.Block.String() + ")"
	case KindText, KindCode:
		return e.Kind.String() + "(" + strconv.Quote(e.Text) + ")"
	default:
		return e.Kind.String()
	}
}

// Supported reports whether the renderer has formatting rules for the tag.
func (t Tag) Supported() bool {
	return t < TagBlockQuote
}

// Start returns a KindStart event for block.
func Start(block Block) Event { return Event{Kind: KindStart, Block: block} }

// End returns a KindEnd event for block.
func End(block Block) Event { return Event{Kind: KindEnd, Block: block} }

// Text returns a KindText event.
func Text(s string) Event { return Event{Kind: KindText, Text: s} }

// Code returns a KindCode event.
func Code(s string) Event { return Event{Kind: KindCode, Text: s} }

// SoftBreak returns a KindSoftBreak event.
func SoftBreak() Event { return Event{Kind: KindSoftBreak} }

// HardBreak returns a KindHardBreak event.
func HardBreak() Event { return Event{Kind: KindHardBreak} }

// Paragraph returns a paragraph block.
func Paragraph() Block { return Block{Tag: TagParagraph} }

// Heading returns a heading block of the given level.
func Heading(level int) Block { return Block{Tag: TagHeading, Level: level} }

// CodeBlock returns a code block with the given info string.
func CodeBlock(info string) Block { return Block{Tag: TagCodeBlock, Info: info} }

// BulletList returns an unordered list block.
func BulletList(tight bool) Block { return Block{Tag: TagList, Tight: tight} }

// OrderedList returns an ordered list block whose first item is numbered start.
func OrderedList(start int, tight bool) Block {
	return Block{Tag: TagList, Ordered: true, Start: start, Tight: tight}
}

// ListItem returns a list item block.
func ListItem() Block { return Block{Tag: TagListItem} }

// Emphasis returns an emphasis block.
func Emphasis() Block { return Block{Tag: TagEmphasis} }

// Strong returns a strong emphasis block.
func Strong() Block { return Block{Tag: TagStrong} }

// Unsupported returns a block for a construct the renderer rejects.
func Unsupported(tag Tag, name string) Block { return Block{Tag: tag, Name: name} }
