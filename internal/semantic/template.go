package semantic

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/syntax"
)

var (
	reTemplateStatement  = regexp.MustCompile(`\btemplate(\s*<\s*>)?`)
	reDefaultTemplateArg = regexp.MustCompile(`\s*=[^,]*`)
	reEllipsisIdent      = regexp.MustCompile(`(\.\.\.)?\s*\b([A-Za-z_]\w*)\s*$`)
)

// TemplateStatements returns the template statements in front of the
// symbol, such as "template<typename T>". removeDefaultArgs drops default
// template arguments, which may not be repeated on a definition.
func (v *View) TemplateStatements(removeDefaultArgs bool) []string {
	if !v.IsTemplate() {
		return nil
	}
	full := v.text(v.TrueStart(), v.DeclarationStart())
	full = v.dedent(syntax.RemoveComments(full))
	masked := mask.AngleBrackets(full, true)

	var statements []string
	for _, m := range reTemplateStatement.FindAllStringIndex(masked, -1) {
		statement := full[m[0]:m[1]]
		switch {
		case !strings.HasSuffix(statement, ">"):
			statements = append(statements, statement+"<>")
		case removeDefaultArgs:
			statements = append(statements, stripDefaultTemplateArgs(statement))
		default:
			statements = append(statements, statement)
		}
	}
	return statements
}

// stripDefaultTemplateArgs removes "= value" from each parameter of a
// template statement that ends in '>'.
func stripDefaultTemplateArgs(statement string) string {
	open := strings.IndexByte(statement, '<')
	if open < 0 {
		return statement
	}
	inner := statement[open+1 : len(statement)-1]
	masked := mask.ComparisonOperators(mask.Parentheses(mask.AngleBrackets(inner, true), true))

	var sb strings.Builder
	sb.WriteString(statement[:open+1])
	last := 0
	for _, m := range reDefaultTemplateArg.FindAllStringIndex(masked, -1) {
		sb.WriteString(inner[last:m[0]])
		last = m[1]
	}
	sb.WriteString(inner[last:])
	sb.WriteByte('>')
	return sb.String()
}

// AllTemplateStatements returns the template statements of enclosing
// unspecialized class templates followed by the symbol's own. With forMember
// set, the symbol's own statements are included only if it is itself an
// unspecialized template.
func (v *View) AllTemplateStatements(removeDefaultArgs, forMember bool) []string {
	var all []string
	for _, s := range v.Scopes() {
		if s.IsClassType() && s.IsUnspecializedTemplate() {
			all = append(all, s.TemplateStatements(removeDefaultArgs)...)
		}
	}
	if !forMember || v.IsUnspecializedTemplate() {
		all = append(all, v.TemplateStatements(removeDefaultArgs)...)
	}
	return all
}

// CombinedTemplateStatements joins AllTemplateStatements, each followed by
// separator, or returns "" when there are none.
func (v *View) CombinedTemplateStatements(removeDefaultArgs bool, separator string, forMember bool) string {
	all := v.AllTemplateStatements(removeDefaultArgs, forMember)
	if len(all) == 0 {
		return ""
	}
	return strings.Join(all, separator) + separator
}

// TemplateParameters returns the template argument list used to name the
// symbol, such as "<T, N>" for "template<typename T, int N> class Array". For
// an explicit specialization it is the written argument list.
func (v *View) TemplateParameters() string {
	if v.IsSpecializedTemplate() {
		from := v.relative(v.SelectionRange.End)
		masked := mask.AngleBrackets(v.parsable[from:], true)
		open, closing := strings.IndexByte(masked, '<'), strings.IndexByte(masked, '>')
		if open < 0 || closing < 0 {
			return ""
		}
		start := v.startOffset() + from
		return v.file.Doc.Text()[start+open : start+closing+1]
	}

	statements := v.TemplateStatements(true)
	if len(statements) == 0 {
		return ""
	}
	statement := statements[len(statements)-1]
	open := strings.IndexByte(statement, '<')
	if open < 0 {
		return ""
	}
	inner := statement[open+1 : len(statement)-1]
	masked := mask.AngleBrackets(inner, true)

	var names []string
	pos := 0
	for _, piece := range strings.Split(masked, ",") {
		raw := inner[pos : pos+len(piece)]
		pos += len(piece) + 1
		m := reEllipsisIdent.FindStringSubmatchIndex(piece)
		if m == nil || strings.TrimSpace(piece[:m[0]]) == "" {
			continue
		}
		name := raw[m[4]:m[5]]
		if m[2] >= 0 {
			name += "..."
		}
		names = append(names, name)
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// TemplatedName is the name followed by TemplateParameters.
func (v *View) TemplatedName() string {
	return v.Name + v.TemplateParameters()
}
