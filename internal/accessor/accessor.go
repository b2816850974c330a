// Package accessor builds getters and setters for member variables.
//
// An accessor has a declaration for the class body and a definition that can
// be placed inline, elsewhere in the header or in a source file.
package accessor

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/syntax"
)

var (
	reQualifiers    = regexp.MustCompile(`\b(static|const|volatile|mutable)\b`)
	reStaticMutable = regexp.MustCompile(`\b(static|mutable)\s*`)
	reWhitespace    = regexp.MustCompile(`\s+`)
)

// Kind distinguishes getters from setters.
type Kind int

const (
	Getter Kind = iota
	Setter
)

func (k Kind) String() string {
	if k == Setter {
		return "setter"
	}
	return "getter"
}

// DefinitionLocation is where an accessor's definition goes.
type DefinitionLocation string

const (
	Inline      DefinitionLocation = "inline"
	CurrentFile DefinitionLocation = "current-file"
	SourceFile  DefinitionLocation = "source-file"
)

// Options control the generated body and parameter name.
type Options struct {
	// ExplicitThis qualifies non-static members with "this->".
	ExplicitThis bool
	// CaseStyle names the setter parameter when the member name has no
	// decoration to strip.
	CaseStyle syntax.CaseStyle
}

// Accessor is a member function to be generated for a member variable.
type Accessor struct {
	Kind     Kind
	Member   *semantic.View
	Name     string
	IsStatic bool
	// ReturnType includes the space or declarator that separates it from the
	// name, as in "int " or "std::string &".
	ReturnType string
	Parameter  string
	Body       string
}

// NewGetter returns a getter for member.
func NewGetter(member *semantic.View, opts Options) *Accessor {
	a := &Accessor{
		Kind:     Getter,
		Member:   member,
		Name:     member.GetterName(),
		IsStatic: member.IsStatic(),
	}
	a.ReturnType = getterReturnType(leadingType(member))
	a.Body = "return " + memberPrefix(member, a.IsStatic, opts) + member.Name + ";"
	return a
}

// getterReturnType drops qualifiers from the declared type, leaving those
// inside template arguments alone.
func getterReturnType(leading string) string {
	open, closing := strings.IndexByte(leading, '<'), strings.LastIndexByte(leading, '>')
	var t string
	if open >= 0 && closing > open {
		t = reQualifiers.ReplaceAllString(leading[:open], "") +
			leading[open:closing+1] +
			reQualifiers.ReplaceAllString(leading[closing+1:], "")
	} else {
		t = reQualifiers.ReplaceAllString(leading, "")
	}
	return strings.TrimLeft(reWhitespace.ReplaceAllString(t, " "), " ")
}

// NewSetter returns a setter for member. Primitive, pointer and reference
// members are passed by value; a reference member's parameter is its
// referenced type. Other types are passed by const reference.
func NewSetter(member *semantic.View, opts Options) *Accessor {
	a := &Accessor{
		Kind:       Setter,
		Member:     member,
		Name:       member.SetterName(),
		IsStatic:   member.IsStatic(),
		ReturnType: "void ",
	}
	name := setterParameterName(member, opts.CaseStyle)
	t := reStaticMutable.ReplaceAllString(leadingType(member), "")
	t = strings.TrimLeft(reWhitespace.ReplaceAllString(t, " "), " ")

	if member.IsPrimitive() || member.IsPointer() || member.IsReference() {
		a.Parameter = removeReference(t) + name
	} else {
		a.Parameter = "const " + t + "&" + name
	}
	a.Body = memberPrefix(member, a.IsStatic, opts) + member.Name + " = " + name + ";"
	return a
}

// setterParameterName picks a name that differs from the member's.
func setterParameterName(member *semantic.View, style syntax.CaseStyle) string {
	base := member.BaseName()
	if base != member.Name {
		return base
	}
	if formatted := style.Format(base); formatted != member.Name {
		return formatted
	}
	return base + "_"
}

// removeReference deletes the first '&' outside template arguments.
func removeReference(t string) string {
	masked := mask.AngleBrackets(t, true)
	i := strings.IndexByte(masked, '&')
	if i < 0 {
		return t
	}
	return t[:i] + t[i+1:]
}

func leadingType(member *semantic.View) string {
	leading := member.ParsableLeadingText()
	leading = strings.Replace(leading, "[[", "", 1)
	return strings.Replace(leading, "]]", "", 1)
}

func memberPrefix(member *semantic.View, isStatic bool, opts Options) string {
	switch {
	case opts.ExplicitThis && !isStatic:
		return "this->"
	case isStatic:
		if p := member.Parent(); p != nil {
			return p.Name + "::"
		}
	}
	return ""
}

func (a *Accessor) params() string {
	return a.Name + "(" + a.Parameter + ")"
}

func (a *Accessor) constQualifier() string {
	if a.Kind == Getter && !a.IsStatic {
		return " const"
	}
	return ""
}

// Declaration returns the declaration without a trailing semicolon.
func (a *Accessor) Declaration() string {
	s := ""
	if a.IsStatic {
		s = "static "
	}
	return s + a.ReturnType + a.params() + a.constQualifier()
}

// InlineDefinition returns the declaration with its body on one line, for
// definitions inside the class.
func (a *Accessor) InlineDefinition() string {
	return a.Declaration() + " { " + a.Body + " }"
}

// Definition returns the definition for pos in target. It is qualified with
// the class scope and marked inline when it lands in the class's header but
// outside the class body.
func (a *Accessor) Definition(target *semantic.File, pos document.Position, style position.Style) string {
	eol := target.Doc.EOL()
	inline := ""
	parent := a.Member.Parent()
	if (parent == nil || !semantic.ContainsExclusive(parent.Range, pos)) && a.Member.Path() == target.Path() {
		inline = "inline "
	}
	return a.Member.CombinedTemplateStatements(true, eol, true) + inline + a.ReturnType +
		a.Member.ScopeString(target, pos) + a.params() + a.constQualifier() +
		style.Braces.Separator(eol, false) + "{" + eol + style.Indent + a.Body + eol + "}"
}

// FindGetter returns the existing getter of member in its class, or nil.
func FindGetter(member *semantic.View) *semantic.View {
	return findSibling(member, member.GetterName())
}

// FindSetter returns the existing setter of member in its class, or nil.
func FindSetter(member *semantic.View) *semantic.View {
	return findSibling(member, member.SetterName())
}

func findSibling(member *semantic.View, name string) *semantic.View {
	for _, s := range member.Siblings() {
		if s.IsFunction() && s.Name == name {
			return s
		}
	}
	return nil
}
