package generate

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
)

// Accessors selects which accessors to generate.
type Accessors int

const (
	GetterOnly Accessors = iota
	SetterOnly
	GetterAndSetter
)

// AccessorRequest describes a getter/setter request.
type AccessorRequest struct {
	Path string
	Pos  document.Position
	Kind Accessors
}

// AccessorResult reports what was generated. Skipped explains why an
// accessor asked for was left out.
type AccessorResult struct {
	*Result
	Generated []string
	Skipped   []string
}

// GenerateAccessors adds a getter, a setter or both for the member variable
// at the cursor. Const members only get a getter, and existing accessors are
// not generated again.
func (g *Generator) GenerateAccessors(ctx context.Context, req AccessorRequest) (*AccessorResult, error) {
	f, member, err := g.symbolAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	if !f.Header {
		return nil, ErrNotHeaderFile
	}
	if !member.IsMemberVariable() {
		return nil, fmt.Errorf("%s: %w", member.Name, ErrNotMemberVariable)
	}

	getter, setter := req.Kind != SetterOnly, req.Kind != GetterOnly
	res := &AccessorResult{}
	if setter && member.IsConst() {
		if !getter {
			return nil, fmt.Errorf("%s: %w", member.Name, ErrConstMember)
		}
		setter = false
		res.Skipped = append(res.Skipped, ErrConstMember.Error())
	}
	if getter && accessor.FindGetter(member) != nil {
		getter = false
		res.Skipped = append(res.Skipped, "a getter already exists")
	}
	if setter && accessor.FindSetter(member) != nil {
		setter = false
		res.Skipped = append(res.Skipped, "a setter already exists")
	}
	if !getter && !setter {
		return nil, fmt.Errorf("%s: %w", member.Name, ErrAccessorsExist)
	}

	class := member.Parent()
	opts := accessor.Options{ExplicitThis: g.opts.ExplicitThis, CaseStyle: g.opts.CaseStyle}
	w := edit.New()
	var first *oracle.Location

	add := func(a *accessor.Accessor, p position.Proposed, skipAccessCheck bool) error {
		loc, err := g.insertAccessor(ctx, w, a, class, p, skipAccessCheck)
		if err != nil {
			return err
		}
		if first == nil {
			first = loc
		}
		res.Generated = append(res.Generated, a.Name)
		return nil
	}

	switch {
	case getter && setter:
		p, _ := class.FindPositionForNewMemberFunction(semantic.Public, "", nil)
		next := position.New(p.At, position.Options{
			RelativeTo: p.RelativeTo,
			After:      true,
			NextTo:     true,
			EmptyScope: p.EmptyScope,
		})
		if err := add(accessor.NewGetter(member, opts), p, false); err != nil {
			return nil, err
		}
		if err := add(accessor.NewSetter(member, opts), next, true); err != nil {
			return nil, err
		}
	case getter:
		p, _ := class.FindPositionForNewMemberFunction(semantic.Public, member.SetterName(), member)
		if err := add(accessor.NewGetter(member, opts), p, false); err != nil {
			return nil, err
		}
	default:
		p, _ := class.FindPositionForNewMemberFunction(semantic.Public, member.GetterName(), member)
		if err := add(accessor.NewSetter(member, opts), p, false); err != nil {
			return nil, err
		}
	}

	slogctx.Debug(ctx, "generating accessors", "member", member.Name, "accessors", res.Generated)
	res.Result = &Result{Edit: w, Reveal: first}
	return res, nil
}

// insertAccessor adds the accessor a, declared at p in class. Depending on
// the configured location its definition is inline, elsewhere in the header
// or in the matching source file.
func (g *Generator) insertAccessor(ctx context.Context, w *edit.WorkspaceEdit, a *accessor.Accessor, class *semantic.View, p position.Proposed, skipAccessCheck bool) (*oracle.Location, error) {
	doc := class.Doc()
	eol := doc.EOL()
	specifier := ""
	if !skipAccessCheck && !class.PositionHasAccess(p.At, semantic.Public) {
		specifier = semantic.Public.Specifier() + eol
	}

	location := g.opts.GetterDefinition
	if a.Kind == accessor.Setter {
		location = g.opts.SetterDefinition
	}
	if location == accessor.Inline {
		w.Insert(doc, p.At, p.Format(specifier+a.InlineDefinition(), doc, g.opts.Style))
		return reveal(class.Path(), p.At), nil
	}

	target, err := g.accessorTarget(ctx, a, class, location)
	if err != nil {
		return nil, err
	}
	at, err := g.placer.ForFunctionDefinitionNear(ctx, class.File(), p, target)
	if err != nil {
		return nil, fmt.Errorf("place definition of %s: %w", a.Name, err)
	}
	w.Insert(doc, p.At, p.Format(specifier+a.Declaration()+";", doc, g.opts.Style))
	w.Insert(target.Doc, at.At, at.Format(a.Definition(target, at.At, g.opts.Style), target.Doc, g.opts.Style))
	return reveal(target.Path(), at.At), nil
}

// accessorTarget returns the file an accessor is defined in. A source file
// is only used when the header has one and the class is not a template.
func (g *Generator) accessorTarget(ctx context.Context, a *accessor.Accessor, class *semantic.View, location accessor.DefinitionLocation) (*semantic.File, error) {
	if location == accessor.SourceFile && !a.Member.HasUnspecializedTemplate() {
		match, ok, err := g.matching(ctx, class.Path())
		if err != nil {
			return nil, err
		}
		if ok {
			return g.File(ctx, match)
		}
	}
	return class.File(), nil
}
