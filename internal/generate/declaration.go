package generate

import (
	"context"
	"fmt"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// DeclarationRequest describes an add-declaration request.
type DeclarationRequest struct {
	Path string
	Pos  document.Position
	// Access is the access level of a member function's declaration. It
	// defaults to public.
	Access *semantic.AccessLevel
}

// AddDeclaration declares the function defined at the cursor, in the
// matching header when there is one and in the current file otherwise.
// Member functions are declared in their class under the requested access.
func (g *Generator) AddDeclaration(ctx context.Context, req DeclarationRequest) (*Result, error) {
	_, def, err := g.symbolAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	if !def.IsFunctionDefinition() {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrNotFunctionDefinition)
	}

	targetPath := req.Path
	match, ok, err := g.matching(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	if ok && g.ws.IsHeader(match) {
		targetPath = match
	}
	target, err := g.File(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	existing, err := g.declarationOf(ctx, def)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Path() == targetPath && existing.Matches(def) {
		return &Result{Edit: edit.New(), Reveal: reveal(existing.Path(), existing.SelectionRange.Start)},
			fmt.Errorf("%s: %w", def.Name, ErrDeclarationExists)
	}

	parentClass, err := g.parentClass(ctx, def)
	if err != nil {
		return nil, err
	}
	var access *semantic.AccessLevel
	if parentClass != nil {
		if parentClass.Path() != targetPath {
			target = parentClass.File()
			targetPath = target.Path()
		}
		access = accessOrPublic(req.Access)
	}

	p, err := g.placer.ForFunctionDeclaration(ctx, def, target, parentClass, access)
	if err != nil {
		return nil, fmt.Errorf("place declaration of %s: %w", def.Name, err)
	}
	text := def.DeclarationForTarget(target, p.At)
	if access != nil && !parentClass.PositionHasAccess(p.At, *access) {
		text = access.Specifier() + target.Doc.EOL() + text
	}

	w := edit.New()
	w.Insert(target.Doc, p.At, p.Format(text, target.Doc, g.opts.Style))
	slogctx.Debug(ctx, "adding declaration", "function", def.Name, "target", g.ws.Rel(targetPath))
	return &Result{Edit: w, Reveal: reveal(targetPath, p.At)}, nil
}

func accessOrPublic(a *semantic.AccessLevel) *semantic.AccessLevel {
	if a != nil {
		return a
	}
	public := semantic.Public
	return &public
}

// parentClass returns the class a member function belongs to: its parent
// when defined in the class body, otherwise the class named by its
// qualifier, looked up in its own file and the matching header. It returns
// nil for free functions.
func (g *Generator) parentClass(ctx context.Context, fn *semantic.View) (*semantic.View, error) {
	if p := fn.Parent(); p != nil && p.IsClassType() {
		return p, nil
	}
	scope, ok := fn.ImmediateScope()
	if !ok {
		return nil, nil
	}
	name, _, _ := strings.Cut(scope.Name, "<")
	name = strings.TrimSpace(name)

	paths := []string{fn.Path()}
	if match, ok, err := g.matching(ctx, fn.Path()); err != nil {
		return nil, err
	} else if ok {
		paths = append([]string{match}, paths...)
	}
	for _, path := range paths {
		f, err := g.File(ctx, path)
		if err != nil {
			return nil, err
		}
		if c := findClass(f, name, fn); c != nil {
			return c, nil
		}
	}
	return nil, nil
}

// findClass returns the class or struct named name in f whose enclosing
// namespaces are among the scopes of fn.
func findClass(f *semantic.File, name string, fn *semantic.View) *semantic.View {
	scopes := fn.ScopeNames()
	var found *semantic.View
	f.Tree.Walk(func(n *symbol.Node) bool {
		if n.Name != name || !n.Kind.IsClassType() {
			return true
		}
		c := f.View(n)
		for _, s := range c.Scopes() {
			if !scopes[s.Name] {
				return true
			}
		}
		found = c
		return false
	})
	return found
}
