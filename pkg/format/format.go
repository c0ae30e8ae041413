// Package format is the formatter core: it parses a Markdown document,
// renders its canonical form and reports the difference as byte-range edits
// against the original text.
//
// A Formatter holds only configuration. Every call works on its own copy of
// state, so one Formatter may serve concurrent calls for different texts.
package format

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/event"
	"github.com/yaklabco/mdfmt/pkg/lineindex"
	"github.com/yaklabco/mdfmt/pkg/render"
)

// Policy decides what happens to documents containing constructs the
// renderer does not support.
type Policy string

const (
	// PolicyError fails the request with the unsupported-construct error.
	PolicyError Policy = "error"

	// PolicyIgnore leaves the document untouched and reports the construct
	// in Result.Skipped.
	PolicyIgnore Policy = "ignore"
)

// ParsePolicy validates a policy name. The empty string selects PolicyError.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyError:
		return PolicyError, nil
	case PolicyIgnore:
		return PolicyIgnore, nil
	default:
		return "", fmt.Errorf("unknown unsupported-construct policy %q (want %q or %q)", s, PolicyError, PolicyIgnore)
	}
}

// Formatter produces canonical Markdown.
type Formatter struct {
	parser *event.Parser
	width  int
	policy Policy
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithFlavor selects the Markdown dialect ("commonmark" or "gfm").
func WithFlavor(flavor string) Option {
	return func(f *Formatter) {
		f.parser = event.NewParser(flavor)
	}
}

// WithWidth sets the paragraph fill width.
func WithWidth(width int) Option {
	return func(f *Formatter) {
		if width > 0 {
			f.width = width
		}
	}
}

// WithPolicy sets the unsupported-construct policy.
func WithPolicy(policy Policy) Option {
	return func(f *Formatter) {
		f.policy = policy
	}
}

// New creates a Formatter. The defaults are CommonMark, width 80 and
// PolicyError.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		parser: event.NewParser(event.FlavorCommonMark),
		width:  render.DefaultWidth,
		policy: PolicyError,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flavor returns the configured Markdown dialect.
func (f *Formatter) Flavor() string {
	return f.parser.Flavor()
}

// Width returns the configured fill width.
func (f *Formatter) Width() int {
	return f.width
}

// Policy returns the unsupported-construct policy.
func (f *Formatter) Policy() Policy {
	return f.policy
}

// Canonical returns the canonical rendering of text.
func (f *Formatter) Canonical(text string) (string, error) {
	events := f.parser.Parse([]byte(text))
	out, err := render.Render(events, render.WithWidth(f.width))
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// Result is the outcome of formatting one document.
type Result struct {
	// Canonical is the formatted text. When Skipped is set it is the input.
	Canonical string

	// Edits turn the input into Canonical. Nil when nothing changes.
	Edits []edit.TextEdit

	// Skipped is the unsupported-construct error that made the formatter
	// leave the document alone under PolicyIgnore.
	Skipped error
}

// Changed reports whether formatting changes the document.
func (r Result) Changed() bool {
	return len(r.Edits) > 0
}

// Document formats text and returns the full result.
func (f *Formatter) Document(text string) (Result, error) {
	canonical, err := f.Canonical(text)
	if err != nil {
		if f.policy == PolicyIgnore && errors.Is(err, render.ErrUnsupported) {
			return Result{Canonical: text, Skipped: err}, nil
		}
		return Result{}, err
	}

	return Result{
		Canonical: canonical,
		Edits:     edit.Diff(text, canonical),
	}, nil
}

// Format returns the edits that turn text into its canonical form, in
// ascending order with no overlaps. Already canonical text yields nil.
func (f *Formatter) Format(text string) ([]edit.TextEdit, error) {
	res, err := f.Document(text)
	if err != nil {
		return nil, err
	}
	return res.Edits, nil
}

// ConvertOffsetToPosition maps a byte offset of the indexed text to a 0-based
// line and UTF-16 column.
func ConvertOffsetToPosition(idx *lineindex.Index, offset int) lineindex.LineCol {
	return idx.LineCol(offset)
}
