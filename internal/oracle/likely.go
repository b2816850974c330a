package oracle

import (
	"path/filepath"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
)

// Query identifies the symbol a definition or declaration lookup was made for.
type Query struct {
	Path  string
	Range document.Range
}

// MostLikely reduces oracle results to the single location most likely to be
// the counterpart of the queried symbol. A single result is returned as is.
// Otherwise results outside the workspace are dropped, and the first result
// whose file base name equals the query's, and which is not the queried
// symbol itself, wins. Failing that, among results whose base names contain
// one another, the one with the smallest length difference is chosen.
//
// Matching by base name is a heuristic: with duplicate file names in different
// directories it can pick the wrong file.
func MostLikely(q Query, results []Location, inWorkspace func(path string) bool) (Location, bool) {
	switch len(results) {
	case 0:
		return Location{}, false
	case 1:
		return results[0], true
	}

	base := fileNameBase(q.Path)
	var candidates []Location
	for _, loc := range results {
		if inWorkspace != nil && !inWorkspace(loc.Path) {
			continue
		}
		if loc.Path == q.Path && q.Range.ContainsRange(loc.Range) {
			continue
		}
		if fileNameBase(loc.Path) == base {
			return loc, true
		}
		candidates = append(candidates, loc)
	}

	best, bestDiff := -1, 0
	for i, loc := range candidates {
		other := fileNameBase(loc.Path)
		if !strings.Contains(other, base) && !strings.Contains(base, other) {
			continue
		}
		diff := len(other) - len(base)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return Location{}, false
	}
	return candidates[best], true
}

// fileNameBase strips the directory and extension from a path.
func fileNameBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// InWorkspace returns a predicate reporting whether a path lies under root.
func InWorkspace(root string) func(string) bool {
	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
}
