package generate

import (
	"context"
	"fmt"
	"slices"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/operator"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/placement"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
)

// OperatorSet selects a group of operators.
type OperatorSet int

const (
	// EqualityOperators are operator== and operator!=.
	EqualityOperators OperatorSet = iota
	// RelationalOperators are operator<, operator>, operator<= and operator>=.
	RelationalOperators
	// StreamOutputOperator is operator<< for std::ostream.
	StreamOutputOperator
)

func (s OperatorSet) String() string {
	switch s {
	case RelationalOperators:
		return "relational"
	case StreamOutputOperator:
		return "stream"
	}
	return "equality"
}

// OperatorRequest describes an operator generation request.
type OperatorRequest struct {
	Path string
	Pos  document.Position
	Set  OperatorSet
	// Operands names the base classes and members to compare or print. Nil
	// selects all of them.
	Operands []string
	// Location is where the definitions go. It defaults to inline.
	Location accessor.DefinitionLocation
}

// Operands returns the base classes and non-static members of the class at
// the cursor, or of the class containing it.
func (g *Generator) Operands(ctx context.Context, path string, pos document.Position) ([]operator.Operand, error) {
	class, err := g.classAt(ctx, path, pos)
	if err != nil {
		return nil, err
	}
	return operator.Operands(class), nil
}

func (g *Generator) classAt(ctx context.Context, path string, pos document.Position) (*semantic.View, error) {
	_, v, err := g.symbolAt(ctx, path, pos)
	if err != nil {
		return nil, err
	}
	if !v.IsClassType() {
		v = v.Parent()
	}
	if v == nil || !v.IsClassType() {
		return nil, ErrNotClass
	}
	return v, nil
}

// GenerateOperators adds a group of operators to the class at the cursor.
// The stream operator also includes <ostream> unless the file already
// includes it or <iostream>.
func (g *Generator) GenerateOperators(ctx context.Context, req OperatorRequest) (*Result, error) {
	class, err := g.classAt(ctx, req.Path, req.Pos)
	if err != nil {
		return nil, err
	}
	var operands []operator.Operand
	for _, op := range operator.Operands(class) {
		if req.Operands == nil || slices.Contains(req.Operands, op.Name) {
			operands = append(operands, op)
		}
	}
	opts := operator.Options{
		Friend:       g.opts.FriendComparisonOperators,
		ExplicitThis: g.opts.ExplicitThis,
		Indent:       g.opts.Style.Indent,
	}
	var ops []*operator.Operator
	switch req.Set {
	case EqualityOperators:
		ops = operator.Equality(class, operands, opts)
	case RelationalOperators:
		ops = operator.Relational(class, operands, opts)
	case StreamOutputOperator:
		ops = []*operator.Operator{operator.NewStreamOutput(class, operands, opts)}
	default:
		return nil, fmt.Errorf("unknown operator set %d", req.Set)
	}

	location := req.Location
	if location == "" {
		location = accessor.Inline
	}
	target := class.File()
	if location == accessor.SourceFile && !class.HasUnspecializedTemplate() {
		match, ok, err := g.matching(ctx, class.Path())
		if err != nil {
			return nil, err
		}
		if ok {
			if target, err = g.File(ctx, match); err != nil {
				return nil, err
			}
		}
	}

	p, _ := class.FindPositionForNewMemberFunction(semantic.Public, "", nil)
	next := position.New(p.At, position.Options{
		RelativeTo: p.RelativeTo,
		After:      true,
		NextTo:     true,
		EmptyScope: p.EmptyScope,
	})

	w := edit.New()
	var first *oracle.Location
	for i, op := range ops {
		at := p
		if i > 0 {
			at = next
		}
		loc, err := g.insertOperator(ctx, w, op, at, location, target, i > 0)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = loc
		}
	}

	if req.Set == StreamOutputOperator {
		included := placement.IncludedFiles(class.Doc())
		if !slices.Contains(included, "ostream") && !slices.Contains(included, "iostream") {
			inc := placement.ForNewInclude(class.Doc(), "").System
			w.Insert(class.Doc(), inc.At, inc.Format("#include <ostream>", class.Doc(), g.opts.Style))
		}
	}
	slogctx.Debug(ctx, "generating operators", "class", class.Name, "set", req.Set.String(), "operands", len(operands))
	return &Result{Edit: w, Reveal: first}, nil
}

// insertOperator adds op, declared at p in its class and defined at
// location.
func (g *Generator) insertOperator(ctx context.Context, w *edit.WorkspaceEdit, op *operator.Operator, p position.Proposed, location accessor.DefinitionLocation, target *semantic.File, skipAccessCheck bool) (*oracle.Location, error) {
	class := op.Class
	doc := class.Doc()
	specifier := ""
	if !skipAccessCheck && !class.PositionHasAccess(p.At, semantic.Public) {
		specifier = semantic.Public.Specifier() + doc.EOL()
	}

	if location == accessor.Inline {
		text, ok := op.InlineDefinition()
		if !ok {
			text = op.Definition(class.File(), p.At, g.opts.Style)
		}
		w.Insert(doc, p.At, p.Format(specifier+text, doc, g.opts.Style))
		return reveal(class.Path(), p.At), nil
	}

	at, err := g.placer.ForFunctionDefinitionNear(ctx, class.File(), p, target)
	if err != nil {
		return nil, fmt.Errorf("place definition of %s: %w", op.Name(), err)
	}
	w.Insert(doc, p.At, p.Format(specifier+op.Declaration()+";", doc, g.opts.Style))
	w.Insert(target.Doc, at.At, at.Format(op.Definition(target, at.At, g.opts.Style), target.Doc, g.opts.Style))
	return reveal(target.Path(), at.At), nil
}
