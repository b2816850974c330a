// Package placement decides where generated declarations and definitions go.
//
// The engine prefers a spot next to the counterpart of a neighbouring
// function, so that definitions in a source file follow the order of the
// declarations in the header and the other way round. When no neighbour can
// be linked it falls back to a matching namespace block and finally to the
// end of the file. It never fails for lack of a position; only oracle errors
// are returned.
package placement

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/syntax"
)

// Lookahead is the number of function siblings examined in each direction.
const Lookahead = 6

// Linker finds the counterpart of a function: the definition of a
// declaration or the declaration of a definition. ok is false when the
// oracle has no single likely answer.
type Linker interface {
	Definition(ctx context.Context, v *semantic.View) (loc oracle.Location, ok bool, err error)
	Declaration(ctx context.Context, v *semantic.View) (loc oracle.Location, ok bool, err error)
}

// Engine proposes insertion positions.
type Engine struct {
	links Linker
}

// New creates an engine that links siblings through links.
func New(links Linker) *Engine {
	return &Engine{links: links}
}

// direction selects which counterpart a search links to.
type direction int

const (
	toDefinitions  direction = iota // placing a definition near sibling definitions
	toDeclarations                  // placing a declaration near sibling declarations
)

// ForFunctionDefinition proposes where to put the definition of decl in
// target.
func (e *Engine) ForFunctionDefinition(ctx context.Context, decl *semantic.View, target *semantic.File) (position.Proposed, error) {
	return e.find(ctx, decl, decl.Range, true, target, toDefinitions)
}

// ForFunctionDefinitionNear proposes where to put the definition of a
// function whose declaration is about to be inserted at at in src, such as a
// generated getter. The symbol at.RelativeTo points to serves as the anchor.
func (e *Engine) ForFunctionDefinitionNear(ctx context.Context, src *semantic.File, at position.Proposed, target *semantic.File) (position.Proposed, error) {
	p := at.At
	if at.RelativeTo != nil {
		p = at.RelativeTo.Start
	}
	anchor := src.SymbolAt(p)
	if anchor == nil {
		if target.Tree.Empty() {
			return afterLastNonEmptyLine(target.Doc), nil
		}
		return afterLastSymbol(target), nil
	}
	pivot := anchor.Range
	switch {
	case at.After:
		pivot = document.NewRange(anchor.Range.End, anchor.Range.End)
	case at.Before:
		pivot = document.NewRange(anchor.Range.Start, anchor.Range.Start)
	}
	return e.find(ctx, anchor, pivot, false, target, toDefinitions)
}

// ForFunctionDeclaration proposes where to declare the function def in
// target. When parentClass, a class in target, and access are given, the
// declaration goes into the matching access block of the class.
func (e *Engine) ForFunctionDeclaration(ctx context.Context, def *semantic.View, target *semantic.File, parentClass *semantic.View, access *semantic.AccessLevel) (position.Proposed, error) {
	if parentClass != nil && access != nil {
		if p, ok := parentClass.FindPositionForNewMemberFunction(*access, "", nil); ok {
			slogctx.Debug(ctx, "placing declaration in class", "class", parentClass.Name, "access", access.String())
			return p, nil
		}
	}
	return e.find(ctx, def, def.Range, true, target, toDeclarations)
}

// find runs the fallback chain for anchor. pivot splits the anchor's
// siblings into those before and after it; with excludeAnchor the anchor is
// not a sibling of itself.
func (e *Engine) find(ctx context.Context, anchor *semantic.View, pivot document.Range, excludeAnchor bool, target *semantic.File, dir direction) (position.Proposed, error) {
	if target.Tree.Empty() {
		slogctx.Debug(ctx, "target has no symbols", "target", target.Path())
		return afterLastNonEmptyLine(target.Doc), nil
	}
	src := anchor.File()
	if src.Tree.Empty() {
		return afterLastSymbol(target), nil
	}

	before, after := partition(anchor, pivot, excludeAnchor, dir)

	p, ok, err := e.searchSiblings(ctx, anchor, before, target, dir, true)
	if err != nil || ok {
		return p, err
	}
	p, ok, err = e.searchSiblings(ctx, anchor, after, target, dir, false)
	if err != nil || ok {
		return p, err
	}

	scopes := anchor.Scopes()
	for i := len(scopes) - 1; i >= 0; i-- {
		if !scopes[i].IsNamespace() {
			continue
		}
		if ns := target.FindMatching(scopes[i]); ns != nil {
			slogctx.Debug(ctx, "placing in namespace", "namespace", ns.Name, "target", target.Path())
			return ns.PositionForNewChild(), nil
		}
	}

	slogctx.Debug(ctx, "placing after last symbol", "target", target.Path())
	return afterLastSymbol(target), nil
}

// partition returns the function siblings of anchor ending before pivot,
// nearest first, and those starting after it.
func partition(anchor *semantic.View, pivot document.Range, excludeAnchor bool, dir direction) (before, after []*semantic.View) {
	for _, s := range anchor.Siblings() {
		if !s.IsFunction() || (excludeAnchor && s.Index == anchor.Index) {
			continue
		}
		if !linkable(s, dir) {
			continue
		}
		switch {
		case s.Range.End.BeforeOrEqual(pivot.Start):
			before = append(before, s)
		case s.Range.Start.AfterOrEqual(pivot.End):
			after = append(after, s)
		}
	}
	for i, j := 0, len(before)-1; i < j; i, j = i+1, j-1 {
		before[i], before[j] = before[j], before[i]
	}
	return before, after
}

// linkable reports whether s has a counterpart worth looking up.
func linkable(s *semantic.View, dir direction) bool {
	if dir == toDefinitions {
		return s.IsFunctionDeclaration()
	}
	return s.IsFunctionDefinition()
}

func (e *Engine) searchSiblings(ctx context.Context, anchor *semantic.View, siblings []*semantic.View, target *semantic.File, dir direction, isBefore bool) (position.Proposed, bool, error) {
	if len(siblings) > Lookahead {
		siblings = siblings[:Lookahead]
	}
	for _, s := range siblings {
		if err := ctx.Err(); err != nil {
			return position.Proposed{}, false, err
		}
		loc, ok, err := e.link(ctx, s, dir)
		if err != nil {
			return position.Proposed{}, false, fmt.Errorf("link %s: %w", s.Name, err)
		}
		if !ok || loc.Path != target.Path() {
			continue
		}
		linked := target.SymbolAt(loc.Range.Start)
		if !acceptable(anchor, linked) {
			continue
		}
		slogctx.Debug(ctx, "placing next to linked sibling", "sibling", s.Name, "before", isBefore)
		nextTo := dir == toDeclarations
		if isBefore {
			return position.New(linked.TrailingCommentEnd(), position.Options{
				RelativeTo: position.RelativeRange(linked.FullRange()),
				After:      true,
				NextTo:     nextTo,
			}), true, nil
		}
		start := linked.LeadingCommentStart()
		return position.New(start, position.Options{
			RelativeTo: position.RelativeRange(document.NewRange(start, linked.Range.End)),
			Before:     true,
			NextTo:     nextTo,
		}), true, nil
	}
	return position.Proposed{}, false, nil
}

func (e *Engine) link(ctx context.Context, s *semantic.View, dir direction) (oracle.Location, bool, error) {
	if dir == toDefinitions {
		return e.links.Definition(ctx, s)
	}
	return e.links.Declaration(ctx, s)
}

// acceptable reports whether a linked sibling can anchor the new code. It
// must be a function sharing a scope with the anchor, and must not lie in
// the anchor's own class body. Some servers answer with the class when a
// member has no counterpart.
func acceptable(anchor, linked *semantic.View) bool {
	if linked == nil || !linked.IsFunction() {
		return false
	}
	if linked.Path() == anchor.Path() {
		if p := anchor.Parent(); p != nil && p.Range.ContainsRange(linked.SelectionRange) {
			return false
		}
	}
	return sharesScope(anchor, linked)
}

// sharesScope compares scope names as sets, so that a namespace reopened or
// written as a qualifier still counts as the same scope.
func sharesScope(a, b *semantic.View) bool {
	as, bs := a.ScopeNames(), b.ScopeNames()
	if len(as) == 0 && len(bs) == 0 {
		return true
	}
	for name := range as {
		if bs[name] {
			return true
		}
	}
	return false
}

// ForNewSymbol proposes a position after the last top-level symbol of f, or
// after its last non-empty line.
func ForNewSymbol(f *semantic.File) position.Proposed {
	if f.Tree.Empty() {
		return afterLastNonEmptyLine(f.Doc)
	}
	return afterLastSymbol(f)
}

func afterLastSymbol(f *semantic.File) position.Proposed {
	last := f.View(f.Tree.Last())
	end := syntax.EndOfStatement(f.Doc, last.Range.End)
	return position.New(end, position.Options{
		RelativeTo: position.RelativeRange(document.NewRange(last.TrueStart(), end)),
		After:      true,
	})
}

func afterLastNonEmptyLine(doc *document.Document) position.Proposed {
	p := doc.PositionAfterLastNonEmptyLine()
	return position.New(p, position.Options{After: p != document.Position{}})
}
