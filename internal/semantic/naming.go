package semantic

import (
	"strings"
	"unicode"

	"github.com/hargabyte/cppgen/internal/syntax"
)

// BaseName strips common member decorations from the symbol name: a leading
// "m_" or "s_" and leading or trailing underscores. The name is returned
// unchanged if nothing would be left.
func (v *View) BaseName() string {
	return BaseName(v.Name)
}

// BaseName strips member decorations from name; see View.BaseName.
func BaseName(name string) string {
	base := name
	for _, prefix := range []string{"m_", "s_"} {
		if strings.HasPrefix(base, prefix) && len(base) > len(prefix) {
			base = base[len(prefix):]
			break
		}
	}
	base = strings.Trim(base, "_")
	if base == "" {
		return name
	}
	return base
}

// GetterName returns the name of the getter for a member variable.
func (v *View) GetterName() string { return accessorName("get", v.BaseName()) }

// SetterName returns the name of the setter for a member variable.
func (v *View) SetterName() string { return accessorName("set", v.BaseName()) }

// accessorName follows the convention of base: "get_value" for snake_case,
// "GetValue" for PascalCase and "getValue" otherwise.
func accessorName(prefix, base string) string {
	switch {
	case base == "":
		return prefix
	case strings.Contains(base, "_"):
		return prefix + "_" + base
	case unicode.IsUpper(rune(base[0])):
		return syntax.FirstToUpper(prefix) + base
	}
	return prefix + syntax.FirstToUpper(base)
}
