package generate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// linkChunk is how many definition lookups run at once when searching for
// undefined functions.
const linkChunk = 10

// Target chooses the file a definition is added to.
type Target int

const (
	// CurrentFile adds the definition to the file of the declaration.
	CurrentFile Target = iota
	// SourceFile adds the definition to the source file matching the header.
	SourceFile
)

func (t Target) String() string {
	if t == SourceFile {
		return "source-file"
	}
	return "current-file"
}

// InitializerKind tells what a constructor initializer initializes.
type InitializerKind int

const (
	Delegating InitializerKind = iota
	BaseClass
	Member
)

func (k InitializerKind) String() string {
	switch k {
	case Delegating:
		return "delegating"
	case BaseClass:
		return "base"
	default:
		return "member"
	}
}

// Initializer is an entry a constructor's initializer list can hold.
type Initializer struct {
	Name     string
	Kind     InitializerKind
	Required bool
	Range    document.Range
}

// Initializers returns what a constructor declared at ctor may initialize:
// another constructor of the class when it has several, the base classes
// and the non-static members. Const and reference members are required.
func Initializers(ctor *semantic.View) []Initializer {
	parent := ctor.Parent()
	if !ctor.IsConstructor() || parent == nil || !parent.IsClassType() {
		return nil
	}
	var out []Initializer
	constructors := 0
	for _, c := range parent.Children() {
		if c.IsConstructor() {
			constructors++
		}
	}
	if constructors > 1 {
		out = append(out, Initializer{Name: parent.Name, Kind: Delegating, Range: parent.Range})
	}
	for _, b := range parent.BaseClasses() {
		out = append(out, Initializer{Name: b.Name, Kind: BaseClass, Range: b.Range})
	}
	required := make(map[string]bool)
	for _, m := range parent.MemberVariablesThatRequireInitialization() {
		required[m.Name] = true
	}
	for _, m := range parent.NonStaticMemberVariables() {
		out = append(out, Initializer{Name: m.Name, Kind: Member, Required: required[m.Name], Range: m.Range})
	}
	return out
}

// selectInitializers picks the named initializers plus every required one,
// in declaration order. A delegating constructor excludes everything else.
func selectInitializers(all []Initializer, names []string) []Initializer {
	if len(names) == 1 {
		for _, in := range all {
			if in.Kind == Delegating && in.Name == names[0] {
				return []Initializer{in}
			}
		}
	}
	var out []Initializer
	for _, in := range all {
		if in.Kind == Delegating {
			continue
		}
		if in.Required || slices.Contains(names, in.Name) {
			out = append(out, in)
		}
	}
	slices.SortStableFunc(out, func(a, b Initializer) int {
		return a.Range.Start.Compare(b.Range.Start)
	})
	return out
}

// initializerList renders ": a(), b()" on a line of its own.
func (g *Generator) initializerList(initializers []Initializer, eol string) string {
	if len(initializers) == 0 {
		return ""
	}
	body := "()"
	if g.opts.BracedInitialization {
		body = "{}"
	}
	indent := g.opts.Style.Indent
	parts := make([]string, len(initializers))
	for i, in := range initializers {
		parts[i] = in.Name + body
	}
	return eol + indent + ": " + strings.Join(parts, ","+eol+indent+"  ")
}

// DefinitionRequest describes an add-definition request.
type DefinitionRequest struct {
	Path   string
	Pos    document.Position
	Target Target
	// Initializers names the constructor initializers to generate. Required
	// members are always added.
	Initializers []string
}

// requiresVisibleDefinition returns why decl cannot be defined in another
// file, or nil.
func requiresVisibleDefinition(decl *semantic.View) error {
	switch {
	case decl.IsInline():
		return ErrInline
	case decl.IsConstexpr():
		return ErrConstexpr
	case decl.IsConsteval():
		return ErrConsteval
	case decl.HasUnspecializedTemplate():
		return ErrUnspecializedTemplate
	}
	return nil
}

// AddDefinition adds an empty definition for the function declared at the
// cursor.
func (g *Generator) AddDefinition(ctx context.Context, req DefinitionRequest) (*Result, error) {
	f, decl, err := g.symbolAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	if !decl.IsFunctionDeclaration() {
		return nil, fmt.Errorf("%s: %w", decl.Name, ErrNotFunctionDeclaration)
	}

	targetPath := req.Path
	if req.Target == SourceFile {
		if !f.Header {
			return nil, ErrNotHeaderFile
		}
		match, ok, err := g.matching(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoMatchingSourceFile
		}
		if err := requiresVisibleDefinition(decl); err != nil {
			return nil, err
		}
		targetPath = match
	}

	existing, err := g.definitionOf(ctx, decl)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Result{Edit: edit.New(), Reveal: reveal(existing.Path(), existing.SelectionRange.Start)},
			fmt.Errorf("%s: %w", decl.Name, ErrDefinitionExists)
	}

	target, err := g.File(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	w := edit.New()
	at, err := g.insertDefinition(ctx, w, decl, target, req.Initializers)
	if err != nil {
		return nil, err
	}
	slogctx.Debug(ctx, "adding definition", "function", decl.Name, "target", g.ws.Rel(targetPath), "at", at.String())
	return &Result{Edit: w, Reveal: reveal(targetPath, at)}, nil
}

// insertDefinition adds the skeleton definition of decl to w and returns
// where it goes.
func (g *Generator) insertDefinition(ctx context.Context, w *edit.WorkspaceEdit, decl *semantic.View, target *semantic.File, initializers []string) (document.Position, error) {
	p, err := g.placer.ForFunctionDefinition(ctx, decl, target)
	if err != nil {
		return document.Position{}, fmt.Errorf("place definition of %s: %w", decl.Name, err)
	}
	w.Insert(target.Doc, p.At, g.skeleton(decl, target, p, selectInitializers(Initializers(decl), initializers)))
	return p.At, nil
}

// skeleton returns the empty definition of decl formatted for p in target.
func (g *Generator) skeleton(decl *semantic.View, target *semantic.File, p position.Proposed, initializers []Initializer) string {
	eol := target.Doc.EOL()
	sep := g.opts.Style.Braces.Separator(eol, decl.IsConstructor() || decl.IsDestructor())
	text := decl.NewFunctionDefinition(target, p.At) + g.initializerList(initializers, eol) +
		sep + "{" + eol + eol + "}"
	return p.Format(text, target.Doc, g.opts.Style)
}

// UndefinedFunctions returns the function declarations in path that have no
// definition, in the order they are declared.
func (g *Generator) UndefinedFunctions(ctx context.Context, path string) ([]*semantic.View, error) {
	f, err := g.File(ctx, path)
	if err != nil {
		return nil, err
	}
	var decls []*semantic.View
	f.Tree.Walk(func(n *symbol.Node) bool {
		if v := f.View(n); v.IsFunctionDeclaration() {
			decls = append(decls, v)
		}
		return true
	})

	defined := make([]bool, len(decls))
	for start := 0; start < len(decls); start += linkChunk {
		eg, ectx := errgroup.WithContext(ctx)
		for i := start; i < min(start+linkChunk, len(decls)); i++ {
			eg.Go(func() error {
				_, ok, err := g.links.Definition(ectx, decls[i])
				if err != nil {
					return fmt.Errorf("find definition of %s: %w", decls[i].Name, err)
				}
				defined[i] = ok
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	var undefined []*semantic.View
	for i, d := range decls {
		if !defined[i] {
			undefined = append(undefined, d)
		}
	}
	return undefined, nil
}

// DefinitionsRequest describes a bulk add-definitions request.
type DefinitionsRequest struct {
	Path   string
	Target Target
	// Names restricts the functions to those with these names. Empty means
	// every undefined function.
	Names []string
}

// AddDefinitions adds empty definitions for the undefined functions declared
// in a file. When any selected function must be defined where it is
// declared, all definitions go to the current file.
func (g *Generator) AddDefinitions(ctx context.Context, req DefinitionsRequest) (*Result, error) {
	undefined, err := g.UndefinedFunctions(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	var selected []*semantic.View
	for _, d := range undefined {
		if len(req.Names) == 0 || slices.Contains(req.Names, d.Name) {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoUndefinedFunctions
	}

	targetPath := req.Path
	if req.Target == SourceFile && !anyRequiresVisibleDefinition(selected) {
		src, err := g.File(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		if !src.Header {
			return nil, ErrNotHeaderFile
		}
		match, ok, err := g.matching(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoMatchingSourceFile
		}
		targetPath = match
	}
	target, err := g.File(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	w := edit.New()
	var first *document.Position
	for _, d := range selected {
		at, err := g.insertDefinition(ctx, w, d, target, nil)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = &at
		}
	}
	slogctx.Debug(ctx, "adding definitions", "count", len(selected), "target", g.ws.Rel(targetPath))
	return &Result{Edit: w, Reveal: reveal(targetPath, *first)}, nil
}

func anyRequiresVisibleDefinition(decls []*semantic.View) bool {
	for _, d := range decls {
		if requiresVisibleDefinition(d) != nil {
			return true
		}
	}
	return false
}
