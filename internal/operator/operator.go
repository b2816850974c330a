// Package operator builds comparison and stream output operators for a class
// from a selection of its base classes and member variables.
package operator

import (
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
)

// Kind identifies an operator.
type Kind int

const (
	Equal Kind = iota
	NotEqual
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	StreamOutput
)

var names = [...]string{"operator==", "operator!=", "operator<", "operator>", "operator<=", "operator>=", "operator<<"}

// String returns the function name, such as "operator==".
func (k Kind) String() string { return names[k] }

// Operand is a base class or member variable taking part in an operator.
type Operand struct {
	Name string
	// Base marks a base class, compared through a cast of the whole object.
	Base bool
}

// Operands returns every base class of class followed by its non-static
// member variables.
func Operands(class *semantic.View) []Operand {
	var ops []Operand
	for _, b := range class.BaseClasses() {
		ops = append(ops, Operand{Name: b.Name, Base: true})
	}
	for _, m := range class.NonStaticMemberVariables() {
		ops = append(ops, Operand{Name: m.Name})
	}
	return ops
}

// Options control the shape of generated operators.
type Options struct {
	// Friend makes comparison operators friend functions taking both sides
	// as parameters. Stream output operators are always friends.
	Friend bool
	// ExplicitThis qualifies members of the left operand with "this->".
	ExplicitThis bool
	// Indent is one level of indentation used inside bodies.
	Indent string
}

// Operator is a function to be generated for a class.
type Operator struct {
	Kind     Kind
	Class    *semantic.View
	IsFriend bool
	// ReturnType includes the space or declarator separating it from the name.
	ReturnType string
	Parameters string
	Body       string
}

// Name returns the function name.
func (o *Operator) Name() string { return o.Kind.String() }

func newComparison(kind Kind, class *semantic.View, opts Options) *Operator {
	o := &Operator{Kind: kind, Class: class, IsFriend: opts.Friend, ReturnType: "bool "}
	t := "const " + class.TemplatedName() + " &"
	if o.IsFriend {
		o.Parameters = t + "lhs, " + t + "rhs"
	} else {
		o.Parameters = t + "other"
	}
	return o
}

// sides holds the spellings of the two operands in a comparison body.
type sides struct {
	lhs, lhsCast, rhs, rhsCast string
}

func comparisonSides(friend bool, opts Options) sides {
	switch {
	case friend:
		return sides{lhs: "lhs.", lhsCast: "(lhs)", rhs: "rhs.", rhsCast: "(rhs)"}
	case opts.ExplicitThis:
		return sides{lhs: "this->", lhsCast: "(*this)", rhs: "other.", rhsCast: "(other)"}
	}
	return sides{lhs: "", lhsCast: "(*this)", rhs: "other.", rhsCast: "(other)"}
}

func (s sides) operands(op Operand) (left, right string) {
	if op.Base {
		cast := "static_cast<const " + op.Name + " &>"
		return cast + s.lhsCast, cast + s.rhsCast
	}
	return s.lhs + op.Name, s.rhs + op.Name
}

// alignment continues an expression under the first operand after "return ".
func alignment(indent, spaces string) string {
	if strings.Contains(indent, " ") {
		return spaces
	}
	return indent
}

// NewEqual returns operator== comparing operands in order.
func NewEqual(class *semantic.View, operands []Operand, opts Options) *Operator {
	o := newComparison(Equal, class, opts)
	if len(operands) == 0 {
		o.Body = "return true;"
		return o
	}
	eol := class.Doc().EOL()
	s := comparisonSides(o.IsFriend, opts)
	terms := make([]string, len(operands))
	for i, op := range operands {
		l, r := s.operands(op)
		terms[i] = l + " == " + r
	}
	o.Body = "return " + strings.Join(terms, eol+opts.Indent+alignment(opts.Indent, "    ")+"&& ") + ";"
	return o
}

// NewNotEqual returns operator!= defined in terms of operator==.
func NewNotEqual(class *semantic.View, opts Options) *Operator {
	o := newComparison(NotEqual, class, opts)
	if o.IsFriend {
		o.Body = "return !(lhs == rhs);"
	} else {
		o.Body = "return !(*this == other);"
	}
	return o
}

// NewLessThan returns operator< ordering lexicographically by operands.
func NewLessThan(class *semantic.View, operands []Operand, opts Options) *Operator {
	o := newComparison(LessThan, class, opts)
	if len(operands) == 0 {
		o.Body = "return false;"
		return o
	}
	eol := class.Doc().EOL()
	indent := opts.Indent
	returnTrue := eol + indent + indent + "return true;" + eol + indent
	returnFalse := eol + indent + indent + "return false;" + eol + indent
	s := comparisonSides(o.IsFriend, opts)

	var sb strings.Builder
	for _, op := range operands[:len(operands)-1] {
		l, r := s.operands(op)
		sb.WriteString("if (" + l + " < " + r + ")" + returnTrue)
		sb.WriteString("if (" + r + " < " + l + ")" + returnFalse)
	}
	l, r := s.operands(operands[len(operands)-1])
	sb.WriteString("return " + l + " < " + r + ";")
	o.Body = sb.String()
	return o
}

// NewGreaterThan returns operator> defined in terms of operator<.
func NewGreaterThan(class *semantic.View, opts Options) *Operator {
	o := newComparison(GreaterThan, class, opts)
	if o.IsFriend {
		o.Body = "return rhs < lhs;"
	} else {
		o.Body = "return other < *this;"
	}
	return o
}

// NewLessThanOrEqual returns operator<= defined in terms of operator<.
func NewLessThanOrEqual(class *semantic.View, opts Options) *Operator {
	o := newComparison(LessThanOrEqual, class, opts)
	if o.IsFriend {
		o.Body = "return !(rhs < lhs);"
	} else {
		o.Body = "return !(other < *this);"
	}
	return o
}

// NewGreaterThanOrEqual returns operator>= defined in terms of operator<.
func NewGreaterThanOrEqual(class *semantic.View, opts Options) *Operator {
	o := newComparison(GreaterThanOrEqual, class, opts)
	if o.IsFriend {
		o.Body = "return !(lhs < rhs);"
	} else {
		o.Body = "return !(*this < other);"
	}
	return o
}

// Equality returns operator== and operator!=.
func Equality(class *semantic.View, operands []Operand, opts Options) []*Operator {
	return []*Operator{NewEqual(class, operands, opts), NewNotEqual(class, opts)}
}

// Relational returns operator< followed by the operators derived from it.
func Relational(class *semantic.View, operands []Operand, opts Options) []*Operator {
	return []*Operator{
		NewLessThan(class, operands, opts),
		NewGreaterThan(class, opts),
		NewLessThanOrEqual(class, opts),
		NewGreaterThanOrEqual(class, opts),
	}
}

// NewStreamOutput returns a friend operator<< printing each operand.
func NewStreamOutput(class *semantic.View, operands []Operand, opts Options) *Operator {
	o := &Operator{
		Kind:       StreamOutput,
		Class:      class,
		IsFriend:   true,
		ReturnType: "std::ostream &",
		Parameters: "std::ostream &os, const " + class.TemplatedName() + " &rhs",
	}
	if len(operands) == 0 {
		o.Body = "return os;"
		return o
	}
	eol := class.Doc().EOL()
	indent := opts.Indent
	continuation := eol + indent + alignment(indent, "   ")

	var sb strings.Builder
	spacer := ""
	for _, op := range operands {
		if op.Base {
			sb.WriteString("<< static_cast<const " + op.Name + " &>(rhs)" + continuation)
		} else {
			sb.WriteString(`<< "` + spacer + op.Name + `: " << rhs.` + op.Name + continuation)
		}
		spacer = " "
	}
	o.Body = "os " + strings.TrimRight(sb.String(), " \t\r\n") + ";" + eol + indent + "return os;"
	return o
}

func (o *Operator) constQualifier() string {
	if o.IsFriend {
		return ""
	}
	return " const"
}

// Declaration returns the declaration for the class body without a trailing
// semicolon.
func (o *Operator) Declaration() string {
	friend := ""
	if o.IsFriend {
		friend = "friend "
	}
	return friend + o.ReturnType + o.Name() + "(" + o.Parameters + ")" + o.constQualifier()
}

// InlineDefinition returns the declaration with its body on one line. It
// reports false when the body spans several lines.
func (o *Operator) InlineDefinition() (string, bool) {
	if strings.Contains(o.Body, "\n") {
		return "", false
	}
	return o.Declaration() + " { " + o.Body + " }", true
}

// Definition returns the definition for pos in target. Inside the class body
// a friend keeps its friend specifier; outside it in the class's header the
// definition is marked inline.
func (o *Operator) Definition(target *semantic.File, pos document.Position, style position.Style) string {
	eol := target.Doc.EOL()
	sameFile := o.Class.Path() == target.Path()
	inClass := sameFile && semantic.ContainsExclusive(o.Class.Range, pos)

	var sb strings.Builder
	if !inClass {
		sb.WriteString(o.Class.CombinedTemplateStatements(true, eol, !o.IsFriend))
	}
	switch {
	case inClass && o.IsFriend:
		sb.WriteString("friend ")
	case !inClass && sameFile:
		sb.WriteString("inline ")
	}
	sb.WriteString(o.ReturnType)
	if o.IsFriend {
		sb.WriteString(o.Class.NamespaceScopeString(target, pos))
	} else {
		sb.WriteString(o.Class.ScopeString(target, pos))
	}
	sb.WriteString(o.Name() + "(" + o.Parameters + ")" + o.constQualifier())
	sb.WriteString(style.Braces.Separator(eol, false) + "{" + eol + style.Indent + o.Body + eol + "}")
	return sb.String()
}
