package generate

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/placement"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
)

// MoveRequest describes a move-definition request.
type MoveRequest struct {
	Path string
	Pos  document.Position
	// Access is used when a definition without a declaration moves into
	// its class. It defaults to public.
	Access *semantic.AccessLevel
}

// MoveDefinitionToMatchingFile moves the definition at the cursor to the
// matching file. A definition in a header without a separate declaration
// leaves its declaration behind.
func (g *Generator) MoveDefinitionToMatchingFile(ctx context.Context, req MoveRequest) (*Result, error) {
	_, def, err := g.symbolAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	if !def.IsFunctionDefinition() {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrNotFunctionDefinition)
	}
	match, ok, err := g.matching(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMatchingFile
	}
	if g.ws.IsSource(match) {
		if err := requiresVisibleDefinition(def); err != nil {
			return nil, err
		}
	}

	decl, err := g.declarationOf(ctx, def)
	if err != nil {
		return nil, err
	}
	target, err := g.File(ctx, match)
	if err != nil {
		return nil, err
	}

	var p position.Proposed
	if decl != nil {
		p, err = g.placer.ForFunctionDefinition(ctx, decl, target)
		if err != nil {
			return nil, fmt.Errorf("place definition of %s: %w", def.Name, err)
		}
	} else {
		p = placement.ForNewSymbol(target)
	}

	w := edit.New()
	text := def.DefinitionForTarget(target, p.At, decl, true, g.opts.AlwaysMoveComments)
	w.Insert(target.Doc, p.At, p.Format(text, target.Doc, g.opts.Style))
	if decl == nil && def.File().Header {
		g.leaveDeclaration(w, def)
	} else {
		w.Delete(def.Doc(), deletionRange(def, g.opts.AlwaysMoveComments))
	}
	slogctx.Debug(ctx, "moving definition", "function", def.Name, "target", g.ws.Rel(match))
	return &Result{Edit: w, Reveal: reveal(match, p.At)}, nil
}

// MoveDefinitionIntoOrOutOfClass moves a member function defined in its
// class body below the class, leaving a declaration. A definition outside
// the class replaces its declaration in the class body, or is inserted into
// the class when it has no declaration.
func (g *Generator) MoveDefinitionIntoOrOutOfClass(ctx context.Context, req MoveRequest) (*Result, error) {
	_, def, err := g.symbolAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	if !def.IsFunctionDefinition() {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrNotFunctionDefinition)
	}
	w := edit.New()

	if p := def.Parent(); p != nil && p.IsClassType() {
		class := def.File()
		at, err := g.placer.ForFunctionDefinition(ctx, def, class)
		if err != nil {
			return nil, fmt.Errorf("place definition of %s: %w", def.Name, err)
		}
		text := def.DefinitionForTarget(class, at.At, nil, true, g.opts.AlwaysMoveComments)
		w.Insert(class.Doc, at.At, at.Format(text, class.Doc, g.opts.Style))
		g.leaveDeclaration(w, def)
		return &Result{Edit: w, Reveal: reveal(class.Path(), at.At)}, nil
	}

	decl, err := g.declarationOf(ctx, def)
	if err != nil {
		return nil, err
	}
	if decl != nil {
		if p := decl.Parent(); p == nil || !p.IsClassType() {
			decl = nil
		}
	}
	if decl != nil {
		w.Replace(decl.Doc(), decl.FullRange(), decl.CombineDefinition(def))
		w.Delete(def.Doc(), deletionRange(def, true))
		slogctx.Debug(ctx, "moving definition into class", "function", def.Name, "class", decl.Parent().Name)
		return &Result{Edit: w, Reveal: reveal(decl.Path(), decl.Range.Start)}, nil
	}

	class, err := g.parentClass(ctx, def)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrNotMemberFunction)
	}
	access := accessOrPublic(req.Access)
	target := class.File()
	p, err := g.placer.ForFunctionDeclaration(ctx, def, target, class, access)
	if err != nil {
		return nil, fmt.Errorf("place definition of %s: %w", def.Name, err)
	}
	text := def.DefinitionForTarget(target, p.At, nil, false, g.opts.AlwaysMoveComments)
	if !class.PositionHasAccess(p.At, *access) {
		text = access.Specifier() + target.Doc.EOL() + text
	}
	w.Insert(target.Doc, p.At, p.Format(text, target.Doc, g.opts.Style))
	w.Delete(def.Doc(), deletionRange(def, true))
	return &Result{Edit: w, Reveal: reveal(target.Path(), p.At)}, nil
}

// leaveDeclaration replaces the definition def with its declaration.
func (g *Generator) leaveDeclaration(w *edit.WorkspaceEdit, def *semantic.View) {
	r := def.FullRange()
	if g.opts.AlwaysMoveComments {
		r = def.RangeWithLeadingComment()
	}
	w.Replace(def.Doc(), r, def.NewFunctionDeclaration())
}

// deletionRange returns the range of def with its leading comment and one
// adjacent empty line on each side.
func deletionRange(def *semantic.View, withComment bool) document.Range {
	doc := def.Doc()
	r := def.FullRange()
	if withComment {
		r = def.RangeWithLeadingComment()
	}
	if n := r.Start.Line - 1; n >= 0 {
		if line := doc.LineAt(n); line.IsEmptyOrWhitespace() {
			r = r.Union(line.Range)
		}
	}
	if n := r.End.Line + 1; n < doc.LineCount() {
		if line := doc.LineAt(n); line.IsEmptyOrWhitespace() {
			r = r.Union(line.Range)
		}
	}
	return r
}
