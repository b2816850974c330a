package mask

// Parentheses masks the contents of top-level (...) groups.
func Parentheses(text string, keep bool) string {
	return balanced(text, '(', ')', keep)
}

// Braces masks the contents of top-level {...} groups.
func Braces(text string, keep bool) string {
	return balanced(text, '{', '}', keep)
}

// Brackets masks the contents of top-level [...] groups.
func Brackets(text string, keep bool) string {
	return balanced(text, '[', ']', keep)
}

// AngleBrackets masks the contents of top-level <...> groups.
func AngleBrackets(text string, keep bool) string {
	return balanced(text, '<', '>', keep)
}

// balanced masks every outermost matched left/right pair. Nested pairs are
// covered by their outermost group. An unmatched delimiter is blanked and the
// scan is repeated, so partially written code still masks the groups that do
// balance.
func balanced(text string, left, right byte, keep bool) string {
	b := []byte(text)
	for {
		groups, unbalanced := matchGroups(b, left, right)
		if unbalanced < 0 {
			for _, g := range groups {
				if keep {
					blank(b, g[0]+1, g[1])
				} else {
					blank(b, g[0], g[1]+1)
				}
			}
			return string(b)
		}
		b[unbalanced] = ' '
	}
}

// matchGroups returns the [open, close] offsets of each outermost group, or
// the offset of the first delimiter that cannot be matched.
func matchGroups(b []byte, left, right byte) ([][2]int, int) {
	var groups [][2]int
	depth, open := 0, -1
	for i := 0; i < len(b); i++ {
		if i > 0 && b[i-1] == '\\' {
			continue
		}
		switch b[i] {
		case left:
			if depth == 0 {
				open = i
			}
			depth++
		case right:
			if depth == 0 {
				return nil, i
			}
			depth--
			if depth == 0 {
				groups = append(groups, [2]int{open, i})
			}
		}
	}
	if depth > 0 {
		return nil, open
	}
	return groups, -1
}
