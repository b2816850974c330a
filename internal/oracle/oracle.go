// Package oracle defines the language-intelligence collaborators that the
// generators consume: document symbols and definition/declaration lookup.
//
// Records crossing the boundary use the LSP 3.16 structures from glsp so
// that any language server, or the tree-sitter index in this module, can act
// as an oracle. Inside the module positions are document.Position values.
package oracle

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hargabyte/cppgen/internal/document"
)

// SymbolProvider returns the nested document symbols of a file.
type SymbolProvider interface {
	DocumentSymbols(ctx context.Context, uri protocol.DocumentUri) ([]protocol.DocumentSymbol, error)
}

// DefinitionProvider finds the definitions of the symbol at a position.
type DefinitionProvider interface {
	Definition(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) (Results, error)
}

// DeclarationProvider finds the declarations of the symbol at a position.
type DeclarationProvider interface {
	Declaration(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) (Results, error)
}

// Oracle combines all providers.
type Oracle interface {
	SymbolProvider
	DefinitionProvider
	DeclarationProvider
}

// Results holds what a definition or declaration query returned. Servers
// answer with either plain locations or location links.
type Results struct {
	Locations []protocol.Location
	Links     []protocol.LocationLink
}

// Location is a file path and range.
type Location struct {
	Path  string
	Range document.Range
}

// Flatten converts all results to locations, using the target range of links.
func (r Results) Flatten() []Location {
	out := make([]Location, 0, len(r.Locations)+len(r.Links))
	for _, l := range r.Locations {
		out = append(out, Location{Path: PathFromURI(l.URI), Range: FromProtocolRange(l.Range)})
	}
	for _, l := range r.Links {
		out = append(out, Location{Path: PathFromURI(l.TargetURI), Range: FromProtocolRange(l.TargetRange)})
	}
	return out
}

// Len returns the number of results.
func (r Results) Len() int {
	return len(r.Locations) + len(r.Links)
}

// FromProtocolPosition converts an LSP position.
func FromProtocolPosition(p protocol.Position) document.Position {
	return document.Position{Line: int(p.Line), Character: int(p.Character)}
}

// ToProtocolPosition converts a position to LSP form.
func ToProtocolPosition(p document.Position) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Character)}
}

// FromProtocolRange converts an LSP range.
func FromProtocolRange(r protocol.Range) document.Range {
	return document.Range{Start: FromProtocolPosition(r.Start), End: FromProtocolPosition(r.End)}
}

// ToProtocolRange converts a range to LSP form.
func ToProtocolRange(r document.Range) protocol.Range {
	return protocol.Range{Start: ToProtocolPosition(r.Start), End: ToProtocolPosition(r.End)}
}

// URIFromPath returns a file:// URI for an absolute path.
func URIFromPath(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// PathFromURI returns the file path of a file:// URI. Other strings are
// returned unchanged so that plain paths can be used as URIs.
func PathFromURI(uri protocol.DocumentUri) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}
