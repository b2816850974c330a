// Package generate implements the code generation features: adding
// definitions and declarations, moving definitions, generating accessors and
// operators, keeping signatures in sync, and managing includes, header guards
// and source files.
//
// Every feature reads the workspace through an oracle and returns the
// changes as an edit.WorkspaceEdit; nothing is written until the caller
// applies the edit.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/placement"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/symbol"
	"github.com/hargabyte/cppgen/internal/syntax"
	"github.com/hargabyte/cppgen/internal/workspace"
)

// Refusals. Features return these, possibly wrapped, when the request does
// not apply to the code at the cursor.
var (
	ErrNoSymbol               = errors.New("no symbol detected at the cursor")
	ErrNotHeaderFile          = errors.New("this file is not a header file")
	ErrNotFunctionDeclaration = errors.New("no function declaration detected")
	ErrNotFunctionDefinition  = errors.New("no function definition detected")
	ErrNotMemberVariable      = errors.New("no member variable detected")
	ErrNotClass               = errors.New("no class or struct detected")
	ErrNotMemberFunction      = errors.New("function is not a class member function")
	ErrNoMatchingSourceFile   = errors.New("no matching source file was found")
	ErrNoMatchingFile         = errors.New("no matching header or source file was found")
	ErrInline                 = errors.New("inline functions must be defined in the file that they are declared")
	ErrConstexpr              = errors.New("constexpr functions must be defined in the file that they are declared")
	ErrConsteval              = errors.New("consteval functions must be defined in the file that they are declared")
	ErrUnspecializedTemplate  = errors.New("unspecialized templates must be defined in the file that they are declared")
	ErrDefinitionExists       = errors.New("a definition for this function already exists")
	ErrDeclarationExists      = errors.New("a declaration for this function already exists")
	ErrNoUndefinedFunctions   = errors.New("no undefined functions found in this file")
	ErrConstMember            = errors.New("const member variables cannot have a setter")
	ErrAccessorsExist         = errors.New("the requested accessors already exist")
	ErrNoCounterpart          = errors.New("no linked declaration or definition was found")
	ErrSignatureUnchanged     = errors.New("the signatures already match")
	ErrHeaderGuardExists      = errors.New("the header guard already matches the configured style")
	ErrInvalidInclude         = errors.New("not a valid include statement")
	ErrSourceFileExists       = errors.New("a matching source file already exists")
	ErrNoSourceFolder         = errors.New("no folder for the source file was found")
)

// HeaderGuardStyle selects the directives of a header guard.
type HeaderGuardStyle string

const (
	PragmaOnce HeaderGuardStyle = "pragma-once"
	Define     HeaderGuardStyle = "define"
	Both       HeaderGuardStyle = "both"
)

// Options are the settings that shape generated code.
type Options struct {
	Style position.Style

	ExplicitThis              bool
	FriendComparisonOperators bool
	BracedInitialization      bool
	// AlwaysMoveComments carries the comment above a moved definition along.
	AlwaysMoveComments bool

	GetterDefinition accessor.DefinitionLocation
	SetterDefinition accessor.DefinitionLocation
	CaseStyle        syntax.CaseStyle

	HeaderGuardStyle HeaderGuardStyle
	// HeaderGuardFormat builds the guard macro. ${FILENAME}, ${FILENAME_EXT}
	// and ${DIR} are replaced, and the result is upper cased with every
	// character that cannot appear in an identifier turned into '_'.
	HeaderGuardFormat string
}

// DefaultOptions returns the settings used without a configuration file.
func DefaultOptions() Options {
	return Options{
		Style: position.Style{
			Indent: "    ",
			Braces: position.NewLineCtorDtor,
		},
		AlwaysMoveComments: true,
		GetterDefinition:   accessor.Inline,
		SetterDefinition:   accessor.Inline,
		CaseStyle:          syntax.CamelCase,
		HeaderGuardStyle:   Define,
		HeaderGuardFormat:  "${FILENAME_EXT}",
	}
}

// Result is the outcome of a feature.
type Result struct {
	Edit *edit.WorkspaceEdit
	// Reveal points at the main piece of generated code, if any.
	Reveal *oracle.Location
}

// Generator runs features against a workspace.
type Generator struct {
	ws      *workspace.Workspace
	oracle  oracle.Oracle
	symbols *symbol.Cache
	placer  *placement.Engine
	links   *links
	opts    Options
}

// New creates a generator that reads symbols and links through o.
func New(ws *workspace.Workspace, o oracle.Oracle, opts Options) *Generator {
	l := &links{oracle: o, inWorkspace: oracle.InWorkspace(ws.Root())}
	return &Generator{
		ws:      ws,
		oracle:  o,
		symbols: symbol.NewCache(o),
		placer:  placement.New(l),
		links:   l,
		opts:    opts,
	}
}

// Workspace returns the workspace the generator works in.
func (g *Generator) Workspace() *workspace.Workspace { return g.ws }

// Options returns the generator's settings.
func (g *Generator) Options() Options { return g.opts }

// Invalidate forgets everything read from path, so the next feature sees
// its current content.
func (g *Generator) Invalidate(path string) {
	g.ws.Documents().Invalidate(path)
	g.symbols.Invalidate(path)
}

// InvalidateAll forgets every document read so far.
func (g *Generator) InvalidateAll() {
	g.ws.Documents().InvalidateAll()
	g.symbols.InvalidateAll()
}

// Apply writes the edit to disk and invalidates the files it touched.
func (g *Generator) Apply(w *edit.WorkspaceEdit) error {
	if err := w.Apply(); err != nil {
		return err
	}
	for _, path := range w.Paths() {
		g.Invalidate(path)
	}
	return nil
}

// File reads path with its symbols.
func (g *Generator) File(ctx context.Context, path string) (*semantic.File, error) {
	doc, err := g.ws.Documents().OpenPath(path)
	if err != nil {
		return nil, err
	}
	tree, err := g.symbols.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return semantic.NewFile(doc, tree, g.ws.Options().HeaderExtensions), nil
}

// symbolAt returns the innermost symbol at pos in path.
func (g *Generator) symbolAt(ctx context.Context, path string, pos document.Position) (*semantic.File, *semantic.View, error) {
	f, err := g.File(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	v := f.SymbolAt(pos)
	if v == nil {
		return f, nil, fmt.Errorf("%s:%s: %w", g.ws.Rel(path), pos, ErrNoSymbol)
	}
	return f, v, nil
}

// matching returns the matching header or source file of path.
func (g *Generator) matching(ctx context.Context, path string) (string, bool, error) {
	match, ok, err := g.ws.MatchingHeaderSource(ctx, path)
	if err != nil {
		return "", false, fmt.Errorf("match %s: %w", g.ws.Rel(path), err)
	}
	return match, ok, nil
}

// counterpart resolves a location from the oracle to the symbol it points
// at. It returns nil when the location lies in no symbol.
func (g *Generator) counterpart(ctx context.Context, loc oracle.Location) (*semantic.View, error) {
	f, err := g.File(ctx, loc.Path)
	if err != nil {
		return nil, err
	}
	return f.SymbolAt(loc.Range.Start), nil
}

// definitionOf returns the definition linked to the declaration v, or nil.
func (g *Generator) definitionOf(ctx context.Context, v *semantic.View) (*semantic.View, error) {
	loc, ok, err := g.links.Definition(ctx, v)
	if err != nil || !ok {
		return nil, err
	}
	def, err := g.counterpart(ctx, loc)
	if err != nil || def == nil || !def.IsFunctionDefinition() {
		return nil, err
	}
	return def, nil
}

// declarationOf returns the declaration linked to the definition v, or nil.
func (g *Generator) declarationOf(ctx context.Context, v *semantic.View) (*semantic.View, error) {
	loc, ok, err := g.links.Declaration(ctx, v)
	if err != nil || !ok {
		return nil, err
	}
	decl, err := g.counterpart(ctx, loc)
	if err != nil || decl == nil || !decl.IsFunctionDeclaration() {
		return nil, err
	}
	return decl, nil
}

// reveal returns the location of the first line of text inserted at p.
func reveal(path string, p document.Position) *oracle.Location {
	return &oracle.Location{Path: path, Range: document.NewRange(p, p)}
}

// links adapts the oracle to placement.Linker, reducing results to the most
// likely one.
type links struct {
	oracle      oracle.Oracle
	inWorkspace func(string) bool
}

var _ placement.Linker = (*links)(nil)

func (l *links) Definition(ctx context.Context, v *semantic.View) (oracle.Location, bool, error) {
	res, err := l.oracle.Definition(ctx, oracle.URIFromPath(v.Path()), oracle.ToProtocolPosition(v.SelectionRange.Start))
	if err != nil {
		return oracle.Location{}, false, err
	}
	return l.mostLikely(v, res)
}

func (l *links) Declaration(ctx context.Context, v *semantic.View) (oracle.Location, bool, error) {
	res, err := l.oracle.Declaration(ctx, oracle.URIFromPath(v.Path()), oracle.ToProtocolPosition(v.SelectionRange.Start))
	if err != nil {
		return oracle.Location{}, false, err
	}
	return l.mostLikely(v, res)
}

func (l *links) mostLikely(v *semantic.View, res oracle.Results) (oracle.Location, bool, error) {
	loc, ok := oracle.MostLikely(oracle.Query{Path: v.Path(), Range: v.Range}, res.Flatten(), l.inWorkspace)
	if ok && loc.Path == v.Path() && v.Range.ContainsRange(loc.Range) {
		return oracle.Location{}, false, nil
	}
	return loc, ok, nil
}
