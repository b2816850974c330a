package workspace

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
)

// Store keeps documents read from disk until they are invalidated, so that
// every component of one request sees the same text.
type Store struct {
	mu   sync.Mutex
	docs map[string]*document.Document
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*document.Document)}
}

// Open returns the document for uri, reading it on first use.
func (s *Store) Open(uri protocol.DocumentUri) (*document.Document, error) {
	path := oracle.PathFromURI(uri)

	s.mu.Lock()
	doc, ok := s.docs[path]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	s.Put(doc)
	return doc, nil
}

// OpenPath is Open for a file path.
func (s *Store) OpenPath(path string) (*document.Document, error) {
	return s.Open(oracle.URIFromPath(path))
}

// Put stores doc, replacing the text read for its path.
func (s *Store) Put(doc *document.Document) {
	s.mu.Lock()
	s.docs[doc.Path()] = doc
	s.mu.Unlock()
}

// Invalidate forgets the document at path.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
}

// InvalidateAll forgets every document.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.docs = make(map[string]*document.Document)
	s.mu.Unlock()
}
