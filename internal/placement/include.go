package placement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/position"
)

var (
	rePragmaOnce     = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*pragma[ \t]+once\b`)
	reInclude        = regexp.MustCompile(`^\s*#\s*include\s*(<.+>|".+")`)
	reSystemInclude  = regexp.MustCompile(`<.+>`)
	reNonSpace       = regexp.MustCompile(`\S`)
	reDefineGuardFmt = `(?m)^[ \t]*#[ \t]*define[ \t]+%s\b`
)

// IncludedFiles returns the names written in the #include directives of doc,
// without their quotes or angle brackets.
func IncludedFiles(doc *document.Document) []string {
	var files []string
	for i := 0; i < doc.LineCount(); i++ {
		m := reInclude.FindStringSubmatch(doc.LineAt(i).Text)
		if m == nil {
			continue
		}
		files = append(files, m[1][1:len(m[1])-1])
	}
	return files
}

// IncludePositions are where new system and project includes go.
type IncludePositions struct {
	System  position.Proposed
	Project position.Proposed
}

// AfterHeaderGuard returns the line holding "#pragma once" or the #define of
// guardDefine, whichever comes last. ok is false if doc has neither.
func AfterHeaderGuard(doc *document.Document, guardDefine string) (line document.Line, ok bool) {
	masked := mask.Quotes(mask.RawStringLiterals(mask.Comments(doc.Text(), false), false), false)
	offset := -1
	if loc := rePragmaOnce.FindStringIndex(masked); loc != nil {
		offset = loc[0]
	}
	if guardDefine != "" {
		re := regexp.MustCompile(fmt.Sprintf(reDefineGuardFmt, regexp.QuoteMeta(guardDefine)))
		if loc := re.FindStringIndex(masked); loc != nil && loc[0] > offset {
			offset = loc[0]
		}
	}
	if offset < 0 {
		return document.Line{}, false
	}
	return doc.LineAt(doc.PositionAt(offset).Line), true
}

// AfterHeaderComment proposes a position before the first text that is not a
// comment, or after the comment when there is nothing else.
func AfterHeaderComment(doc *document.Document) position.Proposed {
	masked := mask.Comments(doc.Text(), false)
	if loc := reNonSpace.FindStringIndex(masked); loc != nil {
		return position.New(doc.PositionAt(loc[0]), position.Options{Before: true})
	}
	end := len(strings.TrimRight(doc.Text(), " \t\r\n"))
	return position.New(doc.PositionAt(end), position.Options{After: end != 0})
}

// ForNewInclude proposes positions for new includes at the end of the
// largest existing blocks of system and project includes. A file with only
// one kind uses that block for both. Without includes, new ones go after the
// header guard, or after the header comment.
func ForNewInclude(doc *document.Document, guardDefine string) IncludePositions {
	type block struct{ first, last int }
	var system, project *block
	var largestSystem, largestProject *block

	keepLargest := func(b *block, largest **block) {
		if *largest == nil || b.last-b.first > (*largest).last-(*largest).first {
			*largest = b
		}
	}
	closeSystem := func() {
		if system != nil {
			keepLargest(system, &largestSystem)
			system = nil
		}
	}
	closeProject := func() {
		if project != nil {
			keepLargest(project, &largestProject)
			project = nil
		}
	}

	for i := 0; i < doc.LineCount(); i++ {
		text := doc.LineAt(i).Text
		switch {
		case !reInclude.MatchString(text):
			closeSystem()
			closeProject()
		case reSystemInclude.MatchString(text):
			closeProject()
			if system == nil {
				system = &block{first: i}
			}
			system.last = i
		default:
			closeSystem()
			if project == nil {
				project = &block{first: i}
			}
			project.last = i
		}
	}
	closeSystem()
	closeProject()

	after := func(b *block) position.Proposed {
		line := doc.LineAt(b.last)
		return position.New(line.Range.End, position.Options{
			RelativeTo: position.RelativeRange(line.Range),
			After:      true,
			NextTo:     true,
		})
	}
	switch {
	case largestSystem != nil && largestProject != nil:
		return IncludePositions{System: after(largestSystem), Project: after(largestProject)}
	case largestSystem != nil:
		p := after(largestSystem)
		return IncludePositions{System: p, Project: p}
	case largestProject != nil:
		p := after(largestProject)
		return IncludePositions{System: p, Project: p}
	}

	var p position.Proposed
	if guard, ok := AfterHeaderGuard(doc, guardDefine); ok {
		p = position.New(guard.Range.End, position.Options{After: true})
	} else {
		p = AfterHeaderComment(doc)
	}
	return IncludePositions{System: p, Project: p}
}
