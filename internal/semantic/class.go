package semantic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/mask"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// AccessLevel is a class member access level.
type AccessLevel int

const (
	Public AccessLevel = iota
	Protected
	Private
)

func (a AccessLevel) String() string {
	switch a {
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "public"
}

// Specifier returns the access specifier, as in "public:".
func (a AccessLevel) Specifier() string {
	return a.String() + ":"
}

// ParseAccessLevel parses "public", "protected" or "private".
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch strings.TrimSuffix(strings.TrimSpace(s), ":") {
	case "public":
		return Public, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	}
	return Public, fmt.Errorf("unknown access level %q", s)
}

var (
	reAccessSpecifier = regexp.MustCompile(`\b[A-Za-z_]\w*\s*:`)
	accessRegexps     = map[AccessLevel]*regexp.Regexp{
		Public:    regexp.MustCompile(`\bpublic\s*:`),
		Protected: regexp.MustCompile(`\bprotected\s*:`),
		Private:   regexp.MustCompile(`\bprivate\s*:`),
	}
	reBaseAccess         = regexp.MustCompile(`\b(public|protected|private|virtual|final)\b`)
	reBaseClass          = regexp.MustCompile(`\b[A-Za-z_]\w*(\s*::\s*[A-Za-z_]\w*)*\b(\s*<\s*>)?`)
	reUnqualifiedIdentAt = regexp.MustCompile(`[A-Za-z_]\w*\b`)
)

// AccessSpecifiers returns the labels in the body of a class or struct, such
// as "public:". Nested members are skipped, so labels inside them are not
// reported.
func (v *View) AccessSpecifiers() []SubSymbol {
	if !v.IsClassType() {
		return nil
	}
	start := v.startOffset()
	text := []byte(v.parsable)
	for _, child := range v.Children() {
		from, to := child.startOffset()-start, child.endOffset()-start
		if from < 0 || to > len(text) || from > to {
			continue
		}
		for i := from; i < to; i++ {
			if text[i] != '\n' && text[i] != '\r' {
				text[i] = ' '
			}
		}
	}
	masked := mask.Parentheses(string(text), true)

	bodyFrom := v.relative(v.BodyStart())
	bodyTo := v.relative(v.BodyEnd())
	if bodyTo < bodyFrom {
		return nil
	}

	var specifiers []SubSymbol
	for _, m := range reAccessSpecifier.FindAllStringIndex(masked[bodyFrom:bodyTo], -1) {
		from, to := bodyFrom+m[0], bodyFrom+m[1]
		if to < len(masked) && masked[to] == ':' {
			continue
		}
		if from > 0 && masked[from-1] == ':' {
			continue
		}
		r := document.NewRange(v.positionAt(start+from), v.positionAt(start+to))
		specifiers = append(specifiers, newSubSymbol(v.file.Doc, r, r))
	}
	return specifiers
}

// RangesOfAccess returns the parts of the class body that have the given
// access level, including the implicit block at the top of the body.
func (v *View) RangesOfAccess(access AccessLevel) []document.Range {
	re := accessRegexps[access]
	var ranges []document.Range
	var start *document.Position

	if (access == Private && v.Kind == symbol.KindClass) || (access == Public && v.Kind == symbol.KindStruct) {
		p := v.BodyStart()
		start = &p
	}
	for _, spec := range v.AccessSpecifiers() {
		switch {
		case re.MatchString(spec.Name):
			if start == nil {
				p := spec.Range.End
				start = &p
			}
		case start != nil:
			ranges = append(ranges, document.NewRange(*start, spec.Range.Start))
			start = nil
		}
	}
	if start != nil {
		ranges = append(ranges, document.NewRange(*start, v.BodyEnd()))
	}
	return ranges
}

// PositionHasAccess reports whether p lies in a part of the body with the
// given access level.
func (v *View) PositionHasAccess(p document.Position, access AccessLevel) bool {
	for _, r := range v.RangesOfAccess(access) {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// FindPositionForNewMemberFunction proposes where to declare a new member
// function with the given access. With relativeName set, the position is
// next to the member of that name: before it when it is the setter of
// memberVariable (so a getter lands above its setter), after it otherwise.
// It reports false if v is not a class or struct.
func (v *View) FindPositionForNewMemberFunction(access AccessLevel, relativeName string, memberVariable *View) (position.Proposed, bool) {
	if !v.IsClassType() {
		return position.Proposed{}, false
	}
	isGetter := memberVariable != nil && relativeName != "" && relativeName == memberVariable.SetterName()

	children := v.Children()
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		switch {
		case relativeName != "" && child.Name == relativeName:
			if isGetter {
				return position.New(child.LeadingCommentStart(), position.Options{
					RelativeTo: position.RelativeRange(child.FullRange()),
					Before:     true,
					NextTo:     true,
				}), true
			}
			return position.New(child.TrailingCommentEnd(), position.Options{
				RelativeTo: position.RelativeRange(child.FullRange()),
				After:      true,
				NextTo:     true,
			}), true
		case relativeName == "" && v.PositionHasAccess(child.Range.End, access):
			return position.New(child.TrailingCommentEnd(), position.Options{
				RelativeTo: position.RelativeRange(child.FullRange()),
				After:      true,
			}), true
		}
	}
	return v.PositionForNewChild(), true
}

// PositionForNewChild proposes a position after the last child, or just
// inside the braces of an empty body.
func (v *View) PositionForNewChild() position.Proposed {
	children := v.Children()
	if len(children) > 0 {
		last := children[len(children)-1]
		return position.New(last.TrailingCommentEnd(), position.Options{
			RelativeTo: position.RelativeRange(last.FullRange()),
			After:      true,
		})
	}
	return position.New(v.BodyStart(), position.Options{
		After:       true,
		NextTo:      true,
		EmptyScope:  true,
		InNamespace: v.IsNamespace(),
	})
}

// BaseClasses returns the base classes listed after the class name.
func (v *View) BaseClasses() []SubSymbol {
	if !v.IsClassType() {
		return nil
	}
	doc := v.file.Doc
	from := doc.OffsetAt(v.SelectionRange.End)
	trailing := v.text(v.SelectionRange.End, v.DeclarationEnd())
	masked := mask.AngleBrackets(mask.Comments(trailing, false), true)
	masked = reBaseAccess.ReplaceAllStringFunc(masked, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	var bases []SubSymbol
	for _, m := range reBaseClass.FindAllStringIndex(masked, -1) {
		r := document.NewRange(doc.PositionAt(from+m[0]), doc.PositionAt(from+m[1]))
		sel := r
		if i := unqualifiedIdentifier(masked[m[0]:m[1]]); i != nil {
			sel = document.NewRange(doc.PositionAt(from+m[0]+i[0]), doc.PositionAt(from+m[0]+i[1]))
		}
		bases = append(bases, newSubSymbol(doc, r, sel))
	}
	return bases
}

// unqualifiedIdentifier returns the bounds of the first identifier in text
// that is not followed by "::".
func unqualifiedIdentifier(text string) []int {
	for _, m := range reUnqualifiedIdentAt.FindAllStringIndex(text, -1) {
		if !strings.HasPrefix(strings.TrimLeft(text[m[1]:], " \t\r\n"), "::") {
			return m
		}
	}
	return nil
}

// MemberVariablesThatRequireInitialization returns const and reference
// members, which a constructor must initialize.
func (v *View) MemberVariablesThatRequireInitialization() []*View {
	return v.memberVariables(func(m *View) bool { return m.IsConst() || m.IsReference() })
}

// NonStaticMemberVariables returns the members that are not static.
func (v *View) NonStaticMemberVariables() []*View {
	return v.memberVariables(func(m *View) bool { return !m.IsStatic() })
}

func (v *View) memberVariables(keep func(*View) bool) []*View {
	if !v.IsClassType() {
		return nil
	}
	var members []*View
	for _, child := range v.Children() {
		if child.IsMemberVariable() && keep(child) {
			members = append(members, child)
		}
	}
	return members
}
