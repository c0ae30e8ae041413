package event

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Flavor identifies the Markdown dialect recognized by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Parser produces event streams using goldmark.
// A Parser is safe for concurrent use.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// NewParser creates a parser for the given flavor.
// Unknown flavors fall back to CommonMark.
func NewParser(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse returns the event stream for source.
func (p *Parser) Parse(source []byte) []Event {
	pc := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	w := &walker{source: source}

	// Link reference definitions are consumed by the parser and never reach
	// the tree; surface them so they are not silently dropped.
	if len(pc.References()) > 0 {
		block := Unsupported(TagLink, "LinkReferenceDefinition")
		w.events = append(w.events, Start(block), End(block))
	}

	_ = ast.Walk(doc, w.visit)
	return w.events
}

// Parse is a convenience wrapper around a CommonMark parser.
func Parse(source []byte) []Event {
	return NewParser(FlavorCommonMark).Parse(source)
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts,
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
			),
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}

// walker flattens a goldmark tree into events.
type walker struct {
	source []byte
	events []Event
}

func (w *walker) emit(e Event) {
	w.events = append(w.events, e)
}

// pair emits Start on entry and End on exit.
func (w *walker) pair(block Block, entering bool) {
	if entering {
		w.emit(Start(block))
	} else {
		w.emit(End(block))
	}
}

// leaf emits a Start/End pair once and skips the node's children.
func (w *walker) leaf(block Block, entering bool) ast.WalkStatus {
	if entering {
		w.emit(Start(block))
		w.emit(End(block))
	}
	return ast.WalkSkipChildren
}

//nolint:cyclop,funlen // One case per node type keeps the mapping total and readable.
func (w *walker) visit(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Document:
		// The document itself has no event.

	case *ast.Paragraph, *ast.TextBlock:
		w.pair(Paragraph(), entering)

	case *ast.Heading:
		w.pair(Heading(n.Level), entering)

	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Value(w.source))
		}
		w.codeBlock(n, info, entering)
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		w.codeBlock(n, "", entering)
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if n.IsOrdered() {
			w.pair(OrderedList(n.Start, n.IsTight), entering)
		} else {
			w.pair(BulletList(n.IsTight), entering)
		}

	case *ast.ListItem:
		w.pair(ListItem(), entering)

	case *ast.Emphasis:
		if n.Level >= 2 {
			w.pair(Strong(), entering)
		} else {
			w.pair(Emphasis(), entering)
		}

	case *ast.Text:
		if entering {
			w.text(n)
		}

	case *ast.String:
		if entering && len(n.Value) > 0 {
			w.emit(Text(string(n.Value)))
		}

	case *ast.CodeSpan:
		if entering {
			w.emit(Code(w.codeSpan(n)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		w.pair(Unsupported(TagBlockQuote, "Blockquote"), entering)

	case *ast.ThematicBreak:
		return w.leaf(Unsupported(TagRule, "ThematicBreak"), entering), nil

	case *ast.HTMLBlock:
		return w.leaf(Unsupported(TagHTML, "HTMLBlock"), entering), nil

	case *ast.RawHTML:
		return w.leaf(Unsupported(TagHTML, "RawHTML"), entering), nil

	case *ast.Link:
		w.pair(Unsupported(TagLink, "Link"), entering)

	case *ast.AutoLink:
		return w.leaf(Unsupported(TagLink, "AutoLink"), entering), nil

	case *ast.Image:
		w.pair(Unsupported(TagImage, "Image"), entering)

	case *east.Strikethrough:
		w.pair(Unsupported(TagStrikethrough, "Strikethrough"), entering)

	case *east.TaskCheckBox:
		return w.leaf(Unsupported(TagTaskListMarker, "TaskCheckBox"), entering), nil

	case *east.Table:
		w.pair(Unsupported(TagTable, "Table"), entering)

	case *east.TableHeader:
		w.pair(Unsupported(TagTableHead, "TableHeader"), entering)

	case *east.TableRow:
		w.pair(Unsupported(TagTableRow, "TableRow"), entering)

	case *east.TableCell:
		w.pair(Unsupported(TagTableCell, "TableCell"), entering)

	case *east.FootnoteList:
		// Container of definitions; the definitions carry the events.

	case *east.Footnote:
		w.pair(Unsupported(TagFootnoteDefinition, "Footnote"), entering)

	case *east.FootnoteLink:
		return w.leaf(Unsupported(TagFootnoteReference, "FootnoteLink"), entering), nil

	case *east.FootnoteBacklink:
		return ast.WalkSkipChildren, nil

	default:
		w.pair(Unsupported(TagUnknown, node.Kind().String()), entering)
	}

	return ast.WalkContinue, nil
}

// codeBlock emits a code block with its literal content as a single Text event.
func (w *walker) codeBlock(node ast.Node, info string, entering bool) {
	block := CodeBlock(info)
	if !entering {
		w.emit(End(block))
		return
	}

	w.emit(Start(block))

	var content bytes.Buffer
	lines := node.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		content.Write(seg.Value(w.source))
	}
	if content.Len() > 0 {
		w.emit(Text(content.String()))
	}
}

func (w *walker) text(n *ast.Text) {
	value := n.Value(w.source)
	if n.SoftLineBreak() || n.HardLineBreak() {
		value = bytes.TrimRight(value, " \t")
	}
	if len(value) > 0 {
		w.emit(Text(string(value)))
	}

	switch {
	case n.HardLineBreak():
		w.emit(HardBreak())
	case n.SoftLineBreak():
		w.emit(SoftBreak())
	}
}

// codeSpan returns the code span content with line endings folded to spaces.
func (w *walker) codeSpan(n *ast.CodeSpan) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Value(w.source))
		case *ast.String:
			buf.Write(c.Value)
		}
	}
	return string(bytes.ReplaceAll(buf.Bytes(), []byte("\n"), []byte(" ")))
}
