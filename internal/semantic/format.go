package semantic

import (
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/syntax"
)

var (
	reOutOfClassSpecifiers = regexp.MustCompile(`\b(virtual|static|explicit|friend)\b\s*`)
	reInlineSpecifier      = regexp.MustCompile(`\binline\b\s*`)
	reVirtSpecifiers       = regexp.MustCompile(`\s*\b(override|final)\b`)
	reTrailingSemicolon    = regexp.MustCompile(`\s*;$`)
	reInnerLineStart       = regexp.MustCompile(`\n([^\n])`)
)

// DefinitionOptions control how a declaration is rewritten as a definition.
type DefinitionOptions struct {
	// ScopeString overrides the computed qualifiers in front of the name.
	ScopeString *string
	// CheckForInline adds "inline" when the definition would otherwise be
	// defined in a header outside its class.
	CheckForInline bool
}

// NewFunctionDefinition returns the declaration rewritten as the head of a
// definition at pos in target: qualified as needed, without default
// arguments or specifiers that are illegal outside the class. The body is
// not included. It returns "" unless v is a function declaration.
func (v *View) NewFunctionDefinition(target *File, pos document.Position) string {
	if !v.IsFunctionDeclaration() {
		return ""
	}
	return v.FormatDeclaration(target, pos, DefinitionOptions{CheckForInline: true})
}

// DeclarationForTarget returns the function rewritten as a declaration at pos
// in target.
func (v *View) DeclarationForTarget(target *File, pos document.Position) string {
	return v.FormatDeclaration(target, pos, DefinitionOptions{}) + ";"
}

// DefinitionForTarget returns the whole definition rewritten for pos in
// target, keeping its body. Qualifiers are computed from declaration when
// given. withComment carries over the comment above the definition.
func (v *View) DefinitionForTarget(target *File, pos document.Position, declaration *View, checkForInline, withComment bool) string {
	body := v.dedent(v.text(v.DeclarationEnd(), v.Range.End))
	opts := DefinitionOptions{CheckForInline: checkForInline}
	if declaration != nil {
		s := declaration.ScopeString(target, pos)
		opts.ScopeString = &s
	}
	comment := ""
	if withComment {
		comment = v.dedent(v.text(v.LeadingCommentStart(), v.TrueStart()))
	}
	return comment + v.FormatDeclaration(target, pos, opts) + body
}

// FormatDeclaration rewrites the declaration part of the function for pos in
// target. Continuation lines of a multi-line declaration are realigned to
// account for the change in width of the text in front of the name. It
// returns "" if the parameter list cannot be found.
func (v *View) FormatDeclaration(target *File, pos document.Position, opts DefinitionOptions) string {
	doc := v.file.Doc
	scopeString := ""
	if opts.ScopeString != nil {
		scopeString = *opts.ScopeString
	} else {
		scopeString = v.ScopeString(target, pos)
	}

	declStart := v.DeclarationStart()
	declaration := strings.TrimSuffix(v.text(declStart, v.DeclarationEnd()), ";")
	masked := mask.Parentheses(mask.NonSourceText(declaration, true), true)

	nameEnd := doc.OffsetAt(v.SelectionRange.End) - doc.OffsetAt(declStart)
	if nameEnd < 0 || nameEnd > len(masked) {
		return ""
	}
	paramStart := strings.IndexByte(masked[nameEnd:], '(')
	paramEnd := strings.IndexByte(masked[nameEnd:], ')')
	if paramStart < 0 || paramEnd < 0 {
		return ""
	}
	paramStart += nameEnd
	paramEnd += nameEnd
	parameters := syntax.StripDefaultValues(declaration[paramStart+1 : paramEnd])
	paramPos := doc.PositionAt(doc.OffsetAt(declStart) + paramStart)

	inlineSpecifier := ""
	parent := v.Parent()
	if opts.CheckForInline &&
		(parent == nil || v.Path() != target.Path() || !ContainsExclusive(parent.Range, pos)) &&
		(v.Path() == target.Path() || target.Header) &&
		!v.IsInline() && !v.IsConstexpr() {
		inlineSpecifier = "inline "
	}

	scopeStart := v.ScopeStringStart()
	leading := v.text(declStart, scopeStart)
	oldScopeString := v.text(scopeStart, v.SelectionRange.Start)
	leadingIndent := len(doc.LineAt(v.Range.Start.Line).Indentation())
	leadingLines := strings.Split(leading, doc.EOL())
	alignLength := len(strings.TrimLeft(leadingLines[len(leadingLines)-1], " \t"))
	alignment := leadingIndent + alignLength + len(oldScopeString)

	leading = reOutOfClassSpecifiers.ReplaceAllString(leading, "")
	if !target.Header || !opts.CheckForInline {
		leading = replaceFirst(reInlineSpecifier, leading, "")
	}
	leading = v.dedent(leading)

	specifiers := reVirtSpecifiers.ReplaceAllString(declaration[paramEnd+1:], "")
	definition := v.text(v.SelectionRange.Start, paramPos) + "(" + parameters + ")" + specifiers

	eol := target.Doc.EOL()
	newLeadingLines := strings.Split(leading, eol)
	newAlignLength := len(newLeadingLines[len(newLeadingLines)-1])
	if alignment > 0 {
		re := regexp.MustCompile("(?m)^" + strings.Repeat(" ", alignment))
		definition = re.ReplaceAllLiteralString(definition, strings.Repeat(" ", newAlignLength+len(inlineSpecifier)+len(scopeString)))
	}

	return v.CombinedTemplateStatements(true, eol, false) + inlineSpecifier + leading + scopeString + definition
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// NewFunctionDeclaration returns the head of a function definition followed
// by a semicolon, or "" unless v is a function definition.
func (v *View) NewFunctionDeclaration() string {
	if !v.IsFunctionDefinition() {
		return ""
	}
	return strings.TrimRight(v.text(v.TrueStart(), v.DeclarationEnd()), " \t\r\n") + ";"
}

// CombineDefinition returns v, a declaration, merged with the body of
// definition and indented like v. The comment above the definition is kept
// if v has none.
func (v *View) CombineDefinition(definition *View) string {
	body := definition.dedent(definition.text(definition.DeclarationEnd(), definition.Range.End))
	indent := v.file.Doc.LineAt(v.Range.Start.Line).Indentation()
	body = reInnerLineStart.ReplaceAllString(body, "\n"+indent+"$1")
	head := reTrailingSemicolon.ReplaceAllString(v.FullText(), "")

	if !v.HasLeadingComment() && definition.HasLeadingComment() {
		comment := definition.dedent(definition.text(definition.LeadingCommentStart(), definition.TrueStart()))
		comment = reInnerLineStart.ReplaceAllString(comment, "\n"+indent+"$1")
		return comment + indent + head + body
	}
	return head + body
}
