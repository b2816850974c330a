package generate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/signature"
	"github.com/hargabyte/cppgen/internal/symbol"
)

var (
	reConstexprSpecifier = regexp.MustCompile(`\bconstexpr\b[ \t]*`)
	reConstevalSpecifier = regexp.MustCompile(`\bconsteval\b[ \t]*`)
	reConstQualifier     = regexp.MustCompile(`\bconst\b`)
	reVolatileQualifier  = regexp.MustCompile(`\bvolatile\b`)
	reNoexceptSpecifier  = regexp.MustCompile(`\bnoexcept\b(\s*\(\s*\))?`)
	reCVPrefix           = regexp.MustCompile(`^[\s/*]*(const|volatile)([\s/*]*(const|volatile))?`)
	reVirtSpecifierOrEq  = regexp.MustCompile(`\b(override|final)\b|=`)
)

// UpdateSignature copies the return type and the specifiers of the function
// at the cursor to its linked declaration or definition. Parameters are
// compared but not rewritten.
func (g *Generator) UpdateSignature(ctx context.Context, path string, pos document.Position) (*Result, error) {
	_, current, err := g.symbolAt(ctx, path, pos)
	if err != nil {
		return nil, err
	}
	if !current.IsFunction() {
		return nil, fmt.Errorf("%s: %w", current.Name, ErrNotFunctionDeclaration)
	}
	linked, err := g.linkedFunction(ctx, current)
	if err != nil {
		return nil, err
	}
	if linked == nil {
		return nil, fmt.Errorf("%s: %w", current.Name, ErrNoCounterpart)
	}

	currentSig, err := signature.New(current)
	if err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	linkedSig, err := signature.New(linked)
	if err != nil {
		return nil, fmt.Errorf("read linked signature: %w", err)
	}
	if !currentSig.Parameters.TypesEqual(linkedSig.Parameters) {
		slogctx.Warn(ctx, "parameter types differ and are not updated", "function", current.Name)
	}

	w := edit.New()
	doc := linked.Doc()
	updateLeadingSpecifiers(w, doc, currentSig, linkedSig)
	updateReturnType(w, doc, currentSig, linkedSig)
	if trailing, changed := updatedTrailingSpecifiers(doc, currentSig, linkedSig); changed {
		w.Replace(doc, linkedSig.TrailingSpecifierRange, trailing)
	}
	if w.Empty() {
		return nil, fmt.Errorf("%s: %w", current.Name, ErrSignatureUnchanged)
	}
	slogctx.Debug(ctx, "updating signature", "function", current.Name, "linked", g.ws.Rel(linked.Path()))
	return &Result{Edit: w, Reveal: reveal(linked.Path(), linked.SelectionRange.Start)}, nil
}

// linkedFunction returns the counterpart of fn: its definition when fn is a
// declaration and the other way round. The oracle is asked first. When it
// has no answer, as after the parameters changed, the only function of the
// other kind with the same name and scopes in fn's file or its matching
// file is used.
func (g *Generator) linkedFunction(ctx context.Context, fn *semantic.View) (*semantic.View, error) {
	var linked *semantic.View
	var err error
	if fn.IsFunctionDeclaration() {
		linked, err = g.definitionOf(ctx, fn)
	} else {
		linked, err = g.declarationOf(ctx, fn)
	}
	if err != nil {
		return nil, err
	}
	if linked != nil && linked.Name == fn.Name {
		return linked, nil
	}

	paths := []string{fn.Path()}
	match, ok, err := g.matching(ctx, fn.Path())
	if err != nil {
		return nil, err
	}
	if ok {
		paths = append(paths, match)
	}
	var candidates []*semantic.View
	for _, p := range paths {
		f, err := g.File(ctx, p)
		if err != nil {
			return nil, err
		}
		f.Tree.Walk(func(n *symbol.Node) bool {
			if n.Name != fn.Name || !n.Kind.IsFunction() {
				return true
			}
			v := f.View(n)
			if v.IsFunctionDeclaration() != fn.IsFunctionDeclaration() && v.Matches(fn) {
				candidates = append(candidates, v)
			}
			return true
		})
	}
	if len(candidates) != 1 {
		slogctx.Debug(ctx, "no unique counterpart", "function", fn.Name, "candidates", len(candidates))
		return nil, nil
	}
	return candidates[0], nil
}

// updateLeadingSpecifiers inserts or removes constexpr and consteval.
func updateLeadingSpecifiers(w *edit.WorkspaceEdit, doc *document.Document, current, linked *signature.Signature) {
	declaration := mask.Comments(doc.GetText(linked.Range), true)
	start := doc.OffsetAt(linked.Range.Start)
	remove := func(re *regexp.Regexp) {
		if m := re.FindStringIndex(declaration); m != nil {
			w.Delete(doc, doc.RangeAt(start+m[0], start+m[1]))
		}
	}
	switch {
	case current.IsConstexpr && !linked.IsConstexpr:
		w.Insert(doc, linked.Range.Start, "constexpr ")
	case !current.IsConstexpr && linked.IsConstexpr:
		remove(reConstexprSpecifier)
	}
	switch {
	case current.IsConsteval && !linked.IsConsteval:
		w.Insert(doc, linked.Range.Start, "consteval ")
	case !current.IsConsteval && linked.IsConsteval:
		remove(reConstevalSpecifier)
	}
}

// updateReturnType replaces the linked return type, keeping it apart from a
// following identifier.
func updateReturnType(w *edit.WorkspaceEdit, doc *document.Document, current, linked *signature.Signature) {
	if current.NormalizedReturnType() == linked.NormalizedReturnType() {
		return
	}
	returnType := current.ReturnType
	end := doc.OffsetAt(linked.ReturnTypeRange.End)
	if end < doc.Len() && isIdentByte(doc.Text()[end]) && returnType != "" && isIdentByte(returnType[len(returnType)-1]) {
		returnType += " "
	}
	w.Replace(doc, linked.ReturnTypeRange, returnType)
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// updatedTrailingSpecifiers rewrites the text after the linked parameter
// list so that its cv-qualifiers, ref-qualifier and noexcept match current.
func updatedTrailingSpecifiers(doc *document.Document, current, linked *signature.Signature) (string, bool) {
	original := doc.GetText(linked.TrailingSpecifierRange)
	if strings.TrimSpace(original) == "" {
		text := current.TrailingSpecifiers() + original
		return text, text != original
	}
	text := original
	masked := mask.Parentheses(mask.NonSourceText(text, true), true)

	// cut removes text[from:to] from both strings.
	cut := func(from, to int) {
		text = text[:from] + text[to:]
		masked = masked[:from] + masked[to:]
	}
	prefix := func(s string) {
		text = s + text
		masked = s + masked
	}
	qualifier := func(want, have bool, word string, re *regexp.Regexp) {
		switch {
		case want && !have:
			if text != "" && isIdentByte(text[0]) {
				prefix(" " + word + " ")
			} else {
				prefix(" " + word)
			}
		case !want && have:
			if m := re.FindStringIndex(masked); m != nil {
				cut(blankStart(masked, m[0]), m[1])
			}
		}
	}
	qualifier(current.IsConst, linked.IsConst, "const", reConstQualifier)
	qualifier(current.IsVolatile, linked.IsVolatile, "volatile", reVolatileQualifier)

	if current.RefQualifier != linked.RefQualifier {
		ref := string(current.RefQualifier)
		switch {
		case linked.RefQualifier != signature.NoRef:
			i := strings.Index(masked, string(linked.RefQualifier))
			from, to := i, i+len(linked.RefQualifier)
			if ref == "" {
				from = blankStart(masked, i)
			}
			text = text[:from] + ref + text[to:]
			masked = masked[:from] + ref + masked[to:]
		default:
			n := len(reCVPrefix.FindString(masked))
			text = text[:n] + " " + ref + text[n:]
			masked = masked[:n] + " " + ref + masked[n:]
		}
	}

	if current.NormalizedNoexcept() != linked.NormalizedNoexcept() {
		if m := reNoexceptSpecifier.FindStringIndex(masked); m != nil {
			if current.Noexcept == "" {
				cut(blankStart(masked, m[0]), m[1])
			} else {
				text = text[:m[0]] + current.Noexcept + text[m[1]:]
			}
		} else {
			at := len(strings.TrimRight(masked, " \t\r\n"))
			if m := reVirtSpecifierOrEq.FindStringIndex(masked); m != nil {
				at = len(strings.TrimRight(masked[:m[0]], " \t\r\n"))
			}
			text = text[:at] + " " + current.Noexcept + text[at:]
		}
	}
	return text, text != original
}

// blankStart moves i back over the spaces and tabs in front of it. Blanks
// that indent a line are kept.
func blankStart(s string, i int) int {
	j := i
	for j > 0 && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	if j > 0 && s[j-1] == '\n' {
		return i
	}
	return j
}
