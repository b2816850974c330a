package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/placement"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/semantic"
)

var (
	reSystemIncludeStatement  = regexp.MustCompile(`^\s*#\s*include\s*<.+>`)
	reProjectIncludeStatement = regexp.MustCompile(`^\s*#\s*include\s*".+"`)
	reNonIdentifier           = regexp.MustCompile(`[^A-Za-z0-9_]`)
	rePragmaOnceLine          = regexp.MustCompile(`^[ \t]*#[ \t]*pragma[ \t]+once\b`)
	reIfndefLine              = regexp.MustCompile(`^[ \t]*#[ \t]*ifndef[ \t]+(\w+)`)
	reDefineLine              = regexp.MustCompile(`^[ \t]*#[ \t]*define[ \t]+(\w+)`)
	reEndifLine               = regexp.MustCompile(`^[ \t]*#[ \t]*endif\b`)
	reDirectiveLine           = regexp.MustCompile(`^[ \t]*#`)
	reSameLineBrace           = regexp.MustCompile(`^(\s*::\s*\w+)*[ \t]*\{`)
)

// SwitchHeaderSource returns the header or source file matching path.
func (g *Generator) SwitchHeaderSource(ctx context.Context, path string) (string, error) {
	match, ok, err := g.matching(ctx, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoMatchingFile
	}
	return match, nil
}

// HeaderGuardDefine returns the guard macro for the header at path.
func (g *Generator) HeaderGuardDefine(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(g.ws.Rel(path))
	if dir == "." {
		dir = ""
	}
	define := strings.NewReplacer(
		"${FILENAME_EXT}", strings.ReplaceAll(base, ".", "_"),
		"${FILENAME}", name,
		"${DIR}", dir,
	).Replace(g.opts.HeaderGuardFormat)
	return reNonIdentifier.ReplaceAllString(strings.ToUpper(define), "_")
}

// headerGuard holds the lines of an existing header guard.
type headerGuard struct {
	pragmaOnce int
	define     string
	ifndef     int
	defineLine int
	endif      int
}

func (h headerGuard) lines() []int {
	var lines []int
	for _, n := range []int{h.pragmaOnce, h.ifndef, h.defineLine, h.endif} {
		if n >= 0 {
			lines = append(lines, n)
		}
	}
	slices.Sort(lines)
	return lines
}

// findHeaderGuard looks for "#pragma once" and for an #ifndef/#define pair
// opening the file whose #endif is the last directive.
func findHeaderGuard(doc *document.Document) headerGuard {
	h := headerGuard{pragmaOnce: -1, ifndef: -1, defineLine: -1, endif: -1}
	masked := document.New(doc.Path(), mask.Comments(doc.Text(), false))
	firstDirective := true
	for i := 0; i < masked.LineCount(); i++ {
		text := masked.LineAt(i).Text
		switch {
		case rePragmaOnceLine.MatchString(text):
			h.pragmaOnce = i
			continue
		case !reDirectiveLine.MatchString(text):
			if strings.TrimSpace(text) != "" {
				firstDirective = false
			}
			continue
		}
		if firstDirective && h.ifndef < 0 {
			if m := reIfndefLine.FindStringSubmatch(text); m != nil && i+1 < masked.LineCount() {
				if d := reDefineLine.FindStringSubmatch(masked.LineAt(i + 1).Text); d != nil && d[1] == m[1] {
					h.ifndef, h.defineLine, h.define = i, i+1, m[1]
					i++
					continue
				}
			}
		}
		firstDirective = false
		if h.ifndef >= 0 && reEndifLine.MatchString(text) {
			h.endif = i
		}
	}
	if h.ifndef >= 0 && h.endif < 0 {
		h.ifndef, h.defineLine, h.define = -1, -1, ""
	}
	return h
}

func (g *Generator) guardMatchesStyle(h headerGuard, define string) bool {
	style := g.opts.HeaderGuardStyle
	if (style == PragmaOnce || style == Both) && h.pragmaOnce < 0 {
		return false
	}
	if (style == Define || style == Both) && h.define != define {
		return false
	}
	if style == PragmaOnce && h.ifndef >= 0 || style == Define && h.pragmaOnce >= 0 {
		return false
	}
	return true
}

// lineDeletionRange returns line n with its line break and an adjacent
// empty line on each side.
func lineDeletionRange(doc *document.Document, n int) document.Range {
	lineWithBreak := func(i int) document.Range {
		if i+1 < doc.LineCount() {
			return document.NewRange(document.Position{Line: i}, document.Position{Line: i + 1})
		}
		return doc.LineAt(i).Range
	}
	r := lineWithBreak(n)
	if n > 0 && doc.LineAt(n-1).IsEmptyOrWhitespace() {
		r = r.Union(lineWithBreak(n - 1))
	}
	if n+1 < doc.LineCount() && doc.LineAt(n+1).IsEmptyOrWhitespace() {
		r = r.Union(lineWithBreak(n + 1))
	}
	return r
}

// AddHeaderGuard adds a header guard of the configured style to the header
// at path, replacing a guard of another style.
func (g *Generator) AddHeaderGuard(ctx context.Context, path string) (*Result, error) {
	f, err := g.File(ctx, path)
	if err != nil {
		return nil, err
	}
	if !f.Header {
		return nil, ErrNotHeaderFile
	}
	doc := f.Doc
	eol := doc.EOL()
	define := g.HeaderGuardDefine(path)
	w := edit.New()

	existing := findHeaderGuard(doc)
	var deleted []document.Range
	if lines := existing.lines(); len(lines) > 0 {
		if g.guardMatchesStyle(existing, define) {
			return nil, ErrHeaderGuardExists
		}
		for _, n := range lines {
			r := lineDeletionRange(doc, n)
			if len(deleted) > 0 && r.Start.Before(deleted[len(deleted)-1].End) {
				r = r.WithStart(deleted[len(deleted)-1].End)
				if !r.Start.Before(r.End) {
					continue
				}
			}
			deleted = append(deleted, r)
		}
		slogctx.Debug(ctx, "replacing header guard", "path", g.ws.Rel(path), "directives", len(lines))
	}

	headerAt := placement.AfterHeaderComment(doc)
	footerAt := doc.LineAt(doc.LineCount() - 1).Range.End

	var header, footer string
	style := g.opts.HeaderGuardStyle
	if style == PragmaOnce || style == Both {
		header = "#pragma once" + eol
	}
	if style == Define || style == Both {
		header += "#ifndef " + define + eol + "#define " + define + eol
		footer = eol + "#endif // " + define + eol
	}
	switch {
	case headerAt.Options.After:
		header = eol + eol + header
	case headerAt.Options.Before:
		header += eol
	}
	if strings.TrimSpace(doc.GetText(document.NewRange(headerAt.At, footerAt))) == "" {
		header += eol
	}
	if footer != "" && (footerAt.Line == headerAt.At.Line || !doc.LineAt(footerAt.Line).IsEmptyOrWhitespace()) {
		footer = eol + footer
	}

	at := headerAt.At
	for _, r := range deleted {
		if r.Start.Before(at) && at.Before(r.End) {
			at = r.Start
		}
	}
	w.Insert(doc, at, header)
	for _, r := range deleted {
		w.Delete(doc, r)
	}
	if footer != "" {
		w.Insert(doc, footerAt, footer)
	}
	return &Result{Edit: w, Reveal: reveal(path, at)}, nil
}

// AddInclude adds an include statement to path: "#include <...>" at the end
// of the system includes and `#include "..."` at the end of the project
// includes.
func (g *Generator) AddInclude(ctx context.Context, path, statement string) (*Result, error) {
	statement = strings.TrimSpace(statement)
	f, err := g.File(ctx, path)
	if err != nil {
		return nil, err
	}
	positions := placement.ForNewInclude(f.Doc, g.HeaderGuardDefine(path))
	var p position.Proposed
	switch {
	case reSystemIncludeStatement.MatchString(statement):
		p = positions.System
	case reProjectIncludeStatement.MatchString(statement):
		p = positions.Project
	default:
		return nil, fmt.Errorf("%q: %w", statement, ErrInvalidInclude)
	}
	w := edit.New()
	w.Insert(f.Doc, p.At, p.Format(statement, f.Doc, g.opts.Style))
	return &Result{Edit: w, Reveal: reveal(path, p.At)}, nil
}

// SourceFileRequest describes a create-source-file request.
type SourceFileRequest struct {
	Header string
	// Folder is where the source file goes. It defaults to the source folder
	// closest to the header, or the header's own folder.
	Folder string
	// Extension is used when the folder's source files do not share one.
	Extension string
	// Definitions adds empty definitions for the undefined functions of the
	// header that can live in a source file.
	Definitions bool
}

// SourceFileResult is the created file and its content.
type SourceFileResult struct {
	*Result
	Path string
}

// CreateSourceFile creates the source file matching a header. The file
// includes the header and repeats its namespaces.
func (g *Generator) CreateSourceFile(ctx context.Context, req SourceFileRequest) (*SourceFileResult, error) {
	header, err := g.File(ctx, req.Header)
	if err != nil {
		return nil, err
	}
	if !header.Header {
		return nil, ErrNotHeaderFile
	}
	if _, ok, err := g.matching(ctx, req.Header); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrSourceFileExists
	}

	folder := req.Folder
	if folder == "" {
		folders, err := g.ws.SourceFolders(filepath.Dir(req.Header))
		if err != nil {
			return nil, err
		}
		folder = filepath.Dir(req.Header)
		if len(folders) > 0 {
			folder = folders[0]
		}
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", folder, ErrNoSourceFolder)
	}
	ext, ok := g.ws.SourceExtension(folder)
	switch {
	case ok:
	case req.Extension != "":
		ext = strings.TrimPrefix(req.Extension, ".")
	case len(g.ws.Options().SourceExtensions) > 0:
		ext = g.ws.Options().SourceExtensions[0]
	default:
		ext = "cpp"
	}
	base := filepath.Base(req.Header)
	path := filepath.Join(folder, strings.TrimSuffix(base, filepath.Ext(base))+"."+ext)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s: %w", g.ws.Rel(path), ErrSourceFileExists)
	}

	eol := header.Doc.EOL()
	content := `#include "` + base + `"` + eol
	if ext != "c" {
		if ns := g.namespaceText(header, eol); ns != "" {
			content += eol + ns + eol
		}
	}

	if req.Definitions {
		defs, err := g.sourceDefinitions(ctx, header, path, content)
		if err != nil {
			return nil, err
		}
		content = defs
	}

	w := edit.New()
	w.CreateFile(path, content)
	if err := g.ws.Pair(req.Header, path); err != nil {
		return nil, err
	}
	slogctx.Debug(ctx, "creating source file", "header", g.ws.Rel(req.Header), "path", g.ws.Rel(path))
	return &SourceFileResult{
		Result: &Result{Edit: w, Reveal: reveal(path, document.Position{})},
		Path:   path,
	}, nil
}

// sourceDefinitions adds empty definitions for the undefined functions of
// header to content.
func (g *Generator) sourceDefinitions(ctx context.Context, header *semantic.File, path, content string) (string, error) {
	undefined, err := g.UndefinedFunctions(ctx, header.Path())
	if err != nil {
		return "", err
	}
	for _, decl := range undefined {
		if requiresVisibleDefinition(decl) != nil {
			continue
		}
		target := semantic.NewFile(document.New(path, content), nil, g.ws.Options().HeaderExtensions)
		p := placement.ForNewSymbol(target)
		at := target.Doc.OffsetAt(p.At)
		content = content[:at] + g.skeleton(decl, target, p, selectInitializers(Initializers(decl), nil)) + content[at:]
	}
	return content, nil
}

// namespaceText repeats the namespaces of header as empty blocks.
func (g *Generator) namespaceText(header *semantic.File, eol string) string {
	var top []*semantic.View
	for _, v := range header.TopLevel() {
		if v.IsNamespace() {
			top = append(top, v)
		}
	}
	if len(top) == 0 {
		return ""
	}
	sep := eol
	doc := header.Doc
	if reSameLineBrace.MatchString(doc.TextFrom(top[0].SelectionRange.End)) {
		sep = " "
	}

	var render func(namespaces []*semantic.View) string
	render = func(namespaces []*semantic.View) string {
		var parts []string
		for _, ns := range namespaces {
			text := "namespace " + ns.Name
			if strings.HasPrefix(strings.TrimSpace(ns.LeadingText()), "inline") {
				text = "inline " + text
			}
			var children []*semantic.View
			for _, c := range ns.Children() {
				if c.IsNamespace() {
					children = append(children, c)
				}
			}
			text += sep + "{" + eol
			if body := render(children); body != "" {
				if g.opts.Style.IndentNamespaceBody {
					body = indentLines(body, g.opts.Style.Indent, eol)
				}
				text += body + eol
			}
			text += eol + "} // namespace " + ns.Name
			parts = append(parts, text)
		}
		return strings.Join(parts, eol+eol)
	}
	return render(top)
}

func indentLines(text, indent, eol string) string {
	lines := strings.Split(text, eol)
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, eol)
}
