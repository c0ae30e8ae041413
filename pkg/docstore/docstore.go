// Package docstore keeps the text of open documents together with a line
// index built from that exact text.
package docstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yaklabco/mdfmt/pkg/lineindex"
)

var (
	// ErrUnknownDocument is returned for a URI that is not open.
	ErrUnknownDocument = errors.New("unknown document uri")

	// ErrDocumentExists is returned when opening a URI that is already open.
	ErrDocumentExists = errors.New("document already exists")
)

// Document is an immutable snapshot of one open document.
type Document struct {
	URI     string
	Version int32
	Text    string
	Index   *lineindex.Index
}

func newDocument(uri string, version int32, text string) Document {
	return Document{
		URI:     uri,
		Version: version,
		Text:    text,
		Index:   lineindex.New(text),
	}
}

// Store maps URIs to document snapshots. It is safe for concurrent use.
// Replacing a document swaps the whole snapshot, so a reader holding a
// Document never sees text and index from different versions.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// New creates an empty Store.
func New() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Open stores a new document.
func (s *Store) Open(uri string, version int32, text string) (Document, error) {
	doc := newDocument(uri, version, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; ok {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentExists, uri)
	}
	s.docs[uri] = doc
	return doc, nil
}

// Replace swaps the text of an open document.
func (s *Store) Replace(uri string, version int32, text string) (Document, error) {
	doc := newDocument(uri, version, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	s.docs[uri] = doc
	return doc, nil
}

// Close forgets a document.
func (s *Store) Close(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	delete(s.docs, uri)
	return nil
}

// Get returns the current snapshot of a document.
func (s *Store) Get(uri string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return doc, nil
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// URIs returns the open URIs in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
