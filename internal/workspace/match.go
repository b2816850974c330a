package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// PairStore remembers header/source pairs. A pair is stored in both
// directions.
type PairStore interface {
	SetMatch(a, b string) error
	GetMatch(path string) (string, bool, error)
	DeleteMatch(path string) error
}

type memoryPairs struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemoryPairs() *memoryPairs {
	return &memoryPairs{m: make(map[string]string)}
}

func (p *memoryPairs) SetMatch(a, b string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[a], p.m[b] = b, a
	return nil
}

func (p *memoryPairs) GetMatch(path string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	match, ok := p.m[path]
	return match, ok, nil
}

func (p *memoryPairs) DeleteMatch(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range p.m {
		if k == path || v == path {
			delete(p.m, k)
		}
	}
	return nil
}

// MatchingHeaderSource returns the source file of a header or the header of
// a source file. A remembered pair is used while its partner exists.
// Otherwise candidates with the same base name and an extension of the other
// kind are searched in the file's directory, then below its parent
// directory, then in the rest of the workspace; in the last two the
// candidate whose directory differs least from the file's wins.
func (w *Workspace) MatchingHeaderSource(ctx context.Context, path string) (string, bool, error) {
	match, ok, err := w.pairs.GetMatch(path)
	if err != nil {
		return "", false, err
	}
	if ok {
		if fileExists(match) {
			return match, true, nil
		}
		slogctx.Debug(ctx, "cached match is gone", "path", path, "match", match)
		if err := w.pairs.DeleteMatch(match); err != nil {
			return "", false, err
		}
	}

	match, ok, err = w.findMatchingHeaderSource(ctx, path)
	if err != nil || !ok {
		return "", false, err
	}
	if err := w.pairs.SetMatch(path, match); err != nil {
		return "", false, err
	}
	return match, true, nil
}

// Forget drops every pair path takes part in.
func (w *Workspace) Forget(path string) error {
	return w.pairs.DeleteMatch(path)
}

// Pair records that a and b match.
func (w *Workspace) Pair(a, b string) error {
	return w.pairs.SetMatch(a, b)
}

func (w *Workspace) findMatchingHeaderSource(ctx context.Context, path string) (string, bool, error) {
	if !w.Contains(path) {
		return "", false, nil
	}
	var exts []string
	switch {
	case w.IsHeader(path):
		exts = w.opts.SourceExtensions
	case w.IsSource(path):
		exts = w.opts.HeaderExtensions
	default:
		return "", false, nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	directory := filepath.Dir(path)
	parent := filepath.Dir(directory)

	for _, ext := range exts {
		candidate := filepath.Join(directory, base+"."+ext)
		if candidate != path && fileExists(candidate) {
			return candidate, true, nil
		}
	}

	isCandidate := func(p string) bool {
		name := filepath.Base(p)
		return p != path && strings.TrimSuffix(name, filepath.Ext(name)) == base && hasExtension(p, exts)
	}

	if !w.Contains(parent) {
		parent = w.root
	}
	near, err := w.filesUnder(parent, isCandidate)
	if err != nil {
		return "", false, fmt.Errorf("search %s: %w", parent, err)
	}
	if best, ok := closestDirectory(directory, near); ok {
		return best, true, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	all, err := w.filesUnder(w.root, isCandidate)
	if err != nil {
		return "", false, fmt.Errorf("search workspace: %w", err)
	}
	best, ok := closestDirectory(directory, all)
	return best, ok, nil
}

// closestDirectory picks the path whose directory differs least from dir.
// Ties go to the first path.
func closestDirectory(dir string, paths []string) (string, bool) {
	best, smallest := "", -1
	for _, p := range paths {
		diff := CompareDirectoryPaths(filepath.Dir(p), dir)
		if smallest < 0 || diff < smallest {
			best, smallest = p, diff
		}
	}
	return best, smallest >= 0
}

// CompareDirectoryPaths measures how different two directories are: the
// larger number of segments either path has outside the leading and
// trailing segments they share.
func CompareDirectoryPaths(a, b string) int {
	as, bs := segments(a), segments(b)
	minSegments := min(len(as), len(bs))

	leading := 0
	for leading < minSegments && as[leading] == bs[leading] {
		leading++
	}

	trailing := 0
	for i := 1; i < minSegments-leading; i++ {
		if as[len(as)-i] != bs[len(bs)-i] {
			break
		}
		trailing++
	}

	return max(len(as)-leading-trailing, len(bs)-leading-trailing)
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(filepath.ToSlash(path), "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SourceFolders returns the directories that hold source files, ordered by
// how little they differ from near.
func (w *Workspace) SourceFolders(near string) ([]string, error) {
	files, err := w.filesUnder(w.root, w.IsSource)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		if d := filepath.Dir(f); !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return CompareDirectoryPaths(dirs[i], near) < CompareDirectoryPaths(dirs[j], near)
	})
	return dirs, nil
}

// SourceExtension returns the extension the source files in dir share. ok is
// false when dir has no source files or they use more than one extension.
func (w *Workspace) SourceExtension(dir string) (ext string, ok bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() || !w.IsSource(e.Name()) {
			continue
		}
		x := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		if ext != "" && ext != x {
			return "", false
		}
		ext = x
	}
	return ext, ext != ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
