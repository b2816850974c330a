package semantic

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/symbol"
	"github.com/hargabyte/cppgen/internal/syntax"
)

var (
	reScopeName      = regexp.MustCompile(`[A-Za-z_]\w*(\s*<\s*>)?`)
	reImmediateScope = regexp.MustCompile(`([A-Za-z_]\w*)(\s*<\s*>)?\s*::\s*$`)
)

// NamedScopes returns the scope qualifiers written in front of the name, as
// in ["ns", "Widget"] for "void ns::Widget::resize()".
func (v *View) NamedScopes() []string {
	leading := v.ParsableLeadingText()
	from := v.relative(v.ScopeStringStart())
	to := strings.LastIndex(leading, "::")
	if to < from {
		return nil
	}
	scopeString := leading[from:to]
	masked := mask.AngleBrackets(scopeString, true)
	var scopes []string
	for _, m := range reScopeName.FindAllStringIndex(masked, -1) {
		scopes = append(scopes, syntax.NormalizeWhitespace(scopeString[m[0]:m[1]]))
	}
	return scopes
}

// AllScopes returns every scope name that qualifies the symbol: enclosing
// symbols and the qualifiers written in front of each name, outermost first.
func (v *View) AllScopes() []string {
	var all []string
	for _, s := range v.Scopes() {
		all = append(all, s.NamedScopes()...)
		all = append(all, syntax.NormalizeWhitespace(s.TemplatedName()))
	}
	return append(all, v.NamedScopes()...)
}

// Matches reports whether other names the same entity: the same name, a
// compatible kind and the same scopes.
func (v *View) Matches(other *View) bool {
	if v.Name != other.Name || !kindsCompatible(v.Kind, other.Kind) {
		return false
	}
	a, b := v.AllScopes(), other.AllScopes()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// kindsCompatible treats all function kinds alike, and classes like structs,
// since servers report declarations and definitions differently.
func kindsCompatible(a, b symbol.Kind) bool {
	switch {
	case a == b:
		return true
	case a.IsFunction() && b.IsFunction():
		return true
	case a.IsClassType() && b.IsClassType():
		return true
	}
	return false
}

// ScopeNames returns the set of names in AllScopes.
func (v *View) ScopeNames() map[string]bool {
	names := make(map[string]bool)
	for _, s := range v.AllScopes() {
		names[scopeBaseName(s)] = true
	}
	return names
}

// ContainsExclusive reports whether p lies strictly inside r.
func ContainsExclusive(r document.Range, p document.Position) bool {
	return r.Start.Before(p) && p.Before(r.End)
}

// ScopeString returns the qualifiers needed to name the symbol at pos in
// target, as in "ns::Widget::". A scope is left out when pos already lies in
// the corresponding scope of target. For a class or namespace the symbol
// itself is included.
func (v *View) ScopeString(target *File, pos document.Position) string {
	return v.scopeString(target, pos, false)
}

// NamespaceScopeString is ScopeString limited to namespaces, for naming free
// functions such as friend operators of a class.
func (v *View) NamespaceScopeString(target *File, pos document.Position) string {
	return v.scopeString(target, pos, true)
}

func (v *View) scopeString(target *File, pos document.Position, namespacesOnly bool) string {
	scopes := v.Scopes()
	if v.IsClassType() || v.IsNamespace() {
		scopes = append(scopes, v)
	}

	var sb strings.Builder
	for _, scope := range scopes {
		if namespacesOnly && !scope.IsNamespace() {
			continue
		}
		if t := target.FindMatching(scope); t != nil && ContainsExclusive(t.Range, pos) {
			continue
		}
		sb.WriteString(scope.text(scope.ScopeStringStart(), scope.SelectionRange.End))
		sb.WriteString(scope.TemplateParameters())
		sb.WriteString("::")
	}
	return sb.String()
}

// ImmediateScope returns the qualifier directly in front of the name, such as
// "Widget" in "void ns::Widget::resize()".
func (v *View) ImmediateScope() (SubSymbol, bool) {
	leading := v.ParsableLeadingText()
	m := reImmediateScope.FindStringSubmatchIndex(mask.AngleBrackets(leading, true))
	if m == nil {
		return SubSymbol{}, false
	}
	end := m[3]
	if m[4] >= 0 {
		end = m[5]
	}
	start := v.startOffset()
	r := document.NewRange(v.positionAt(start+m[2]), v.positionAt(start+end))
	sel := document.NewRange(r.Start, v.positionAt(start+m[3]))
	return newSubSymbol(v.file.Doc, r, sel), true
}
