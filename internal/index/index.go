// Package index answers oracle queries from tree-sitter parses of the
// workspace's C and C++ files.
//
// Document symbols come straight from the parse tree. Definitions and
// declarations are found by qualified name: a function matches another when
// both resolve to the same scopes and name, and overloads are told apart by
// parameter types and constness. Parsed symbols are keyed by a hash of the
// file content and can be persisted through a SymbolStore.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/cppgen/internal/cache"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/parser"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/signature"
	"github.com/hargabyte/cppgen/internal/symbol"
	"github.com/hargabyte/cppgen/internal/workspace"
)

// SymbolStore persists parsed symbols between runs. *cache.Cache satisfies it.
type SymbolStore interface {
	LoadSymbols(path, hash string) ([]protocol.DocumentSymbol, bool, error)
	SaveBulkSymbols(entries []cache.SymbolEntry) error
}

// Index is an oracle.Oracle over a workspace. It is safe for concurrent use.
type Index struct {
	ws    *workspace.Workspace
	store SymbolStore

	mu    sync.Mutex
	files map[string]*fileIndex
}

var _ oracle.Oracle = (*Index)(nil)

// fileIndex is the immutable result of indexing one document.
type fileIndex struct {
	doc     *document.Document
	hash    string
	symbols []protocol.DocumentSymbol
	entries []entry
}

// entry is a function declaration or definition.
type entry struct {
	path       string
	key        string
	definition bool
	rng        document.Range
	selection  document.Range
	// sig is nil when the signature could not be read.
	sig *signature.Signature
}

// New returns an index of ws. store may be nil.
func New(ws *workspace.Workspace, store SymbolStore) *Index {
	return &Index{
		ws:    ws,
		store: store,
		files: make(map[string]*fileIndex),
	}
}

// DocumentSymbols implements oracle.SymbolProvider.
func (x *Index) DocumentSymbols(ctx context.Context, uri protocol.DocumentUri) ([]protocol.DocumentSymbol, error) {
	fi, parsed, err := x.load(ctx, oracle.PathFromURI(uri))
	if err != nil {
		return nil, err
	}
	if parsed {
		x.save(ctx, []*fileIndex{fi})
	}
	return fi.symbols, nil
}

// Definition implements oracle.DefinitionProvider for functions.
func (x *Index) Definition(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) (oracle.Results, error) {
	return x.lookup(ctx, uri, pos, true)
}

// Declaration implements oracle.DeclarationProvider for functions.
func (x *Index) Declaration(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position) (oracle.Results, error) {
	return x.lookup(ctx, uri, pos, false)
}

// Invalidate forgets the index of a file. It is meant as a watcher hook.
func (x *Index) Invalidate(path string) {
	x.mu.Lock()
	delete(x.files, path)
	x.mu.Unlock()
}

// InvalidateAll forgets every indexed file.
func (x *Index) InvalidateAll() {
	x.mu.Lock()
	x.files = make(map[string]*fileIndex)
	x.mu.Unlock()
}

// Len returns the number of indexed files.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.files)
}

func (x *Index) lookup(ctx context.Context, uri protocol.DocumentUri, pos protocol.Position, definitions bool) (oracle.Results, error) {
	path := oracle.PathFromURI(uri)
	fi, _, err := x.load(ctx, path)
	if err != nil {
		return oracle.Results{}, err
	}
	target, ok := fi.entryAt(oracle.FromProtocolPosition(pos))
	if !ok {
		return oracle.Results{}, nil
	}
	if err := x.IndexAll(ctx); err != nil {
		return oracle.Results{}, err
	}

	var candidates []entry
	x.mu.Lock()
	for _, f := range x.files {
		for _, e := range f.entries {
			if e.key != target.key || e.definition != definitions {
				continue
			}
			if e.path == target.path && e.selection == target.selection {
				continue
			}
			candidates = append(candidates, e)
		}
	}
	x.mu.Unlock()

	var results oracle.Results
	for _, e := range overloads(target, candidates) {
		results.Locations = append(results.Locations, protocol.Location{
			URI:   oracle.URIFromPath(e.path),
			Range: oracle.ToProtocolRange(e.selection),
		})
	}
	return results, nil
}

// overloads narrows candidates to those with the parameter types of target,
// preferring the ones that also agree on const. When target's signature
// cannot be read, a single candidate is accepted.
func overloads(target entry, candidates []entry) []entry {
	if target.sig == nil {
		if len(candidates) == 1 {
			return candidates
		}
		return nil
	}
	var exact, sameTypes []entry
	for _, c := range candidates {
		if c.sig == nil || !c.sig.Parameters.TypesEqual(target.sig.Parameters) {
			continue
		}
		sameTypes = append(sameTypes, c)
		if c.sig.IsConst == target.sig.IsConst {
			exact = append(exact, c)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return sameTypes
}

// IndexAll indexes every file of the workspace that changed since it was
// last indexed. Files that cannot be read are logged and skipped.
func (x *Index) IndexAll(ctx context.Context) error {
	paths, err := x.ws.Files()
	if err != nil {
		return fmt.Errorf("list workspace files: %w", err)
	}

	var (
		mu     sync.Mutex
		parsed []*fileIndex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		g.Go(func() error {
			fi, fresh, err := x.load(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slogctx.Warn(gctx, "skipping file", "path", path, "error", err)
				return nil
			}
			if fresh {
				mu.Lock()
				parsed = append(parsed, fi)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	x.save(ctx, parsed)
	return nil
}

// load returns the index of the file at path, building it when the file is
// new or its text changed. parsed reports whether the symbols were produced
// by the parser rather than taken from memory or the store.
func (x *Index) load(ctx context.Context, path string) (fi *fileIndex, parsed bool, err error) {
	doc, err := x.ws.Documents().OpenPath(path)
	if err != nil {
		return nil, false, err
	}

	x.mu.Lock()
	cached := x.files[path]
	x.mu.Unlock()
	if cached != nil && cached.doc == doc {
		return cached, false, nil
	}

	hash := ContentHash(doc.Text())
	if cached != nil && cached.hash == hash {
		cached = &fileIndex{doc: doc, hash: hash, symbols: cached.symbols}
		cached.entries = x.entries(doc, cached.symbols)
		x.put(path, cached)
		return cached, false, nil
	}

	var symbols []protocol.DocumentSymbol
	stored := false
	if x.store != nil {
		symbols, stored, err = x.store.LoadSymbols(path, hash)
		if err != nil {
			slogctx.Warn(ctx, "symbol cache unavailable", "path", path, "error", err)
		}
	}
	if !stored {
		symbols, err = parse(ctx, doc)
		if err != nil {
			return nil, false, err
		}
	}

	fi = &fileIndex{doc: doc, hash: hash, symbols: symbols}
	fi.entries = x.entries(doc, symbols)
	x.put(path, fi)
	return fi, !stored, nil
}

func (x *Index) put(path string, fi *fileIndex) {
	x.mu.Lock()
	x.files[path] = fi
	x.mu.Unlock()
}

func (x *Index) save(ctx context.Context, files []*fileIndex) {
	if x.store == nil || len(files) == 0 {
		return
	}
	entries := make([]cache.SymbolEntry, len(files))
	for i, fi := range files {
		entries[i] = cache.SymbolEntry{FilePath: fi.doc.Path(), ScanHash: fi.hash, Symbols: fi.symbols}
	}
	if err := x.store.SaveBulkSymbols(entries); err != nil {
		slogctx.Warn(ctx, "failed to save symbols", "files", len(entries), "error", err)
		return
	}
	slogctx.Debug(ctx, "saved symbols", "files", len(entries))
}

// parse runs tree-sitter over doc.
func parse(ctx context.Context, doc *document.Document) ([]protocol.DocumentSymbol, error) {
	p, err := parser.NewParser(parser.LanguageForPath(doc.Path()))
	if err != nil {
		return nil, err
	}
	defer p.Close()

	result, err := p.Parse(ctx, []byte(doc.Text()))
	if err != nil {
		if pe, ok := err.(*parser.ParseError); ok {
			pe.File = doc.Path()
		}
		return nil, err
	}
	defer result.Close()
	if result.HasErrors() {
		slogctx.Debug(ctx, "syntax errors, symbols may be incomplete", "file", doc.Path())
	}
	return Symbols(result), nil
}

// entries collects the function declarations and definitions of a document.
func (x *Index) entries(doc *document.Document, symbols []protocol.DocumentSymbol) []entry {
	f := semantic.NewFile(doc, symbol.Build(doc.Path(), symbols), x.ws.Options().HeaderExtensions)
	var out []entry
	f.Tree.Walk(func(n *symbol.Node) bool {
		if !n.Kind.IsFunction() {
			return true
		}
		v := f.View(n)
		definition := v.IsFunctionDefinition()
		if !definition && !v.IsFunctionDeclaration() {
			return true
		}
		e := entry{
			path:       doc.Path(),
			key:        qualifiedName(v),
			definition: definition,
			rng:        v.Range,
			selection:  v.SelectionRange,
		}
		if sig, err := signature.New(v); err == nil {
			e.sig = sig
		}
		out = append(out, e)
		return true
	})
	return out
}

// qualifiedName joins the scopes and name of a symbol without template
// arguments, as in "ui::Widget::resize".
func qualifiedName(v *semantic.View) string {
	var parts []string
	for _, s := range v.AllScopes() {
		if i := strings.IndexByte(s, '<'); i >= 0 {
			s = strings.TrimSpace(s[:i])
		}
		parts = append(parts, s)
	}
	return strings.Join(append(parts, v.Name), "::")
}

// entryAt returns the innermost function entry containing p.
func (fi *fileIndex) entryAt(p document.Position) (entry, bool) {
	var best entry
	found := false
	for _, e := range fi.entries {
		if !e.rng.Contains(p) {
			continue
		}
		if !found || best.rng.ContainsRange(e.rng) {
			best, found = e, true
		}
	}
	return best, found
}

// ContentHash hashes file content for change detection.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
