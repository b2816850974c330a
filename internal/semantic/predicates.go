package semantic

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/symbol"
	"github.com/hargabyte/cppgen/internal/syntax"
)

var (
	reVirtual           = regexp.MustCompile(`\bvirtual\b`)
	reOverrideFinal     = regexp.MustCompile(`\b(override|final)\b`)
	rePureVirtual       = regexp.MustCompile(`\s*=\s*0\s*;?$`)
	reDeletedDefaulted  = regexp.MustCompile(`\s*=\s*(delete|default)\s*;?$`)
	reConstexpr         = regexp.MustCompile(`\bconstexpr\b`)
	reConsteval         = regexp.MustCompile(`\bconsteval\b`)
	reInline            = regexp.MustCompile(`\binline\b`)
	reStatic            = regexp.MustCompile(`\bstatic\b`)
	reConst             = regexp.MustCompile(`\bconst\b`)
	reTemplateStart     = regexp.MustCompile(`^template\b`)
	reUnspecialized     = regexp.MustCompile(`\btemplate\s*<\s*[^\s>]`)
	reTypedef           = regexp.MustCompile(`\btypedef\b`)
	reUsing             = regexp.MustCompile(`\busing\b`)
	reClassOrTemplateID = regexp.MustCompile(`\b(struct|class)\b|<[^>]*>`)
)

// IsFunction reports whether the symbol is a function of any kind.
func (v *View) IsFunction() bool { return v.Kind.IsFunction() }

// IsClassType reports whether the symbol is a class or struct.
func (v *View) IsClassType() bool { return v.Kind.IsClassType() }

// IsNamespace reports whether the symbol is a namespace.
func (v *View) IsNamespace() bool { return v.Kind == symbol.KindNamespace }

// IsMemberVariable reports whether the symbol is a field of a class or struct.
func (v *View) IsMemberVariable() bool {
	if v.Kind != symbol.KindField {
		return false
	}
	p := v.Parent()
	return p != nil && p.IsClassType()
}

// endsWithBody reports whether the symbol text ends in a closing brace.
func (v *View) endsWithBody() bool {
	return strings.HasSuffix(strings.TrimRight(v.parsable, "; \t\r\n"), "}")
}

// IsFunctionDeclaration reports whether the symbol declares a function
// without defining it. Deleted, defaulted and pure virtual functions are
// neither declarations nor definitions for code generation.
func (v *View) IsFunctionDeclaration() bool {
	if !v.IsFunction() || v.IsDeletedOrDefaulted() || v.IsPureVirtual() {
		return false
	}
	return v.Detail == "declaration" || !v.endsWithBody()
}

// IsFunctionDefinition reports whether the symbol is a function with a body.
func (v *View) IsFunctionDefinition() bool {
	if !v.IsFunction() || v.IsDeletedOrDefaulted() || v.IsPureVirtual() {
		return false
	}
	return v.Detail != "declaration" && v.endsWithBody()
}

// IsConstructor reports whether the symbol is a constructor, declared in its
// class or defined out of line.
func (v *View) IsConstructor() bool {
	if v.Kind == symbol.KindConstructor {
		return true
	}
	if v.Kind != symbol.KindMethod && v.Kind != symbol.KindFunction {
		return false
	}
	if p := v.Parent(); p != nil && p.IsClassType() {
		return v.Name == p.Name
	}
	if s, ok := v.ImmediateScope(); ok {
		return v.Name == scopeBaseName(s.Name)
	}
	return false
}

// IsDestructor reports whether the symbol is a destructor.
func (v *View) IsDestructor() bool {
	if !strings.HasPrefix(v.Name, "~") {
		return false
	}
	if p := v.Parent(); p != nil && p.IsClassType() {
		return v.Name == "~"+p.Name
	}
	if s, ok := v.ImmediateScope(); ok {
		return v.Name == "~"+scopeBaseName(s.Name)
	}
	return true
}

// scopeBaseName drops template arguments from a scope name.
func scopeBaseName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

// IsVirtual reports whether the function is virtual, override or final.
func (v *View) IsVirtual() bool {
	if reVirtual.MatchString(v.ParsableLeadingText()) {
		return true
	}
	return reOverrideFinal.MatchString(v.parsable[v.relative(v.SelectionRange.End):])
}

// IsPureVirtual reports whether the function is declared "= 0".
func (v *View) IsPureVirtual() bool {
	return v.IsVirtual() && rePureVirtual.MatchString(v.parsable)
}

// IsDeletedOrDefaulted reports whether the function is "= delete" or "= default".
func (v *View) IsDeletedOrDefaulted() bool {
	return reDeletedDefaulted.MatchString(v.parsable)
}

// IsConstexpr reports whether the symbol is declared constexpr.
func (v *View) IsConstexpr() bool { return reConstexpr.MatchString(v.ParsableLeadingText()) }

// IsConsteval reports whether the function is declared consteval.
func (v *View) IsConsteval() bool { return reConsteval.MatchString(v.ParsableLeadingText()) }

// IsInline reports whether the symbol is declared inline.
func (v *View) IsInline() bool { return reInline.MatchString(v.ParsableLeadingText()) }

// IsStatic reports whether the symbol is declared static.
func (v *View) IsStatic() bool { return reStatic.MatchString(v.ParsableLeadingText()) }

func (v *View) maskedLeadingType() string {
	return mask.AngleBrackets(v.ParsableLeadingText(), true)
}

// IsPointer reports whether the declared type is a pointer.
func (v *View) IsPointer() bool { return strings.Contains(v.maskedLeadingType(), "*") }

// IsReference reports whether the declared type is a reference.
func (v *View) IsReference() bool { return strings.Contains(v.maskedLeadingType(), "&") }

// IsConst reports whether the declared type is const at the top level.
func (v *View) IsConst() bool { return reConst.MatchString(v.maskedLeadingType()) }

// IsTemplate reports whether the symbol is preceded by a template statement.
func (v *View) IsTemplate() bool { return reTemplateStart.MatchString(v.ParsableFullText()) }

// IsUnspecializedTemplate reports whether the symbol has a template statement
// with parameters.
func (v *View) IsUnspecializedTemplate() bool {
	return reUnspecialized.MatchString(v.ParsableFullLeadingText())
}

// IsSpecializedTemplate reports whether the symbol is an explicit specialization.
func (v *View) IsSpecializedTemplate() bool {
	return v.IsTemplate() && !v.IsUnspecializedTemplate()
}

// HasUnspecializedTemplate reports whether the symbol or an enclosing scope
// is an unspecialized template.
func (v *View) HasUnspecializedTemplate() bool {
	for _, s := range v.Scopes() {
		if s.IsUnspecializedTemplate() {
			return true
		}
	}
	return v.IsUnspecializedTemplate()
}

func (v *View) mightBeTypedefOrTypeAlias() bool {
	switch v.Kind {
	case symbol.KindClass, symbol.KindStruct, symbol.KindInterface, symbol.KindTypeParameter, symbol.KindUnknown:
		return true
	}
	return false
}

// IsTypedef reports whether the symbol is a typedef.
func (v *View) IsTypedef() bool {
	return v.mightBeTypedefOrTypeAlias() && reTypedef.MatchString(v.parsable)
}

// IsTypeAlias reports whether the symbol is a "using X = ..." alias.
func (v *View) IsTypeAlias() bool {
	return v.mightBeTypedefOrTypeAlias() && reUsing.MatchString(v.parsable) && strings.Contains(v.parsable, "=")
}

// IsPrimitive reports whether a variable, typedef or alias names a built-in
// type. Typedefs and aliases of other types are not followed.
func (v *View) IsPrimitive() bool {
	switch {
	case v.Kind.IsVariable():
		return syntax.MatchesPrimitiveType(v.ParsableLeadingText())
	case v.IsTypedef():
		return !reClassOrTemplateID.MatchString(v.parsable) && syntax.MatchesPrimitiveType(v.parsable)
	case v.IsTypeAlias():
		i := strings.IndexByte(v.parsable, '=')
		return i >= 0 && syntax.MatchesPrimitiveType(v.parsable[i+1:])
	}
	return false
}
