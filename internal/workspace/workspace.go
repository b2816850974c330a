// Package workspace models the directory tree a command works on: which
// files belong to it, the documents opened from it, and which header and
// source files pair up.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/hargabyte/cppgen/internal/exclude"
)

// Options selects the files of a workspace. Extensions are given without
// the leading dot.
type Options struct {
	HeaderExtensions []string
	SourceExtensions []string
	// Exclude holds glob patterns matched against slash separated paths
	// relative to the root and against base names.
	Exclude []string
}

// Workspace is a root directory and the rules that pick its C/C++ files.
type Workspace struct {
	root  string
	opts  Options
	gi    *ignore.GitIgnore
	auto  *exclude.AutoExcludeResult
	pairs PairStore
	docs  *Store
}

// New creates a workspace rooted at root. Pairs found by header/source
// matching are remembered in pairs; nil keeps them in memory.
func New(root string, opts Options, pairs PairStore) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		pairs = newMemoryPairs()
	}
	return &Workspace{
		root:  abs,
		opts:  opts,
		gi:    CompileGitignore(LoadGitignore(abs)),
		auto:  exclude.DetectAutoExcludes(abs),
		pairs: pairs,
		docs:  NewStore(),
	}, nil
}

// Root returns the absolute root directory.
func (w *Workspace) Root() string { return w.root }

// Options returns the file selection options.
func (w *Workspace) Options() Options { return w.opts }

// Documents returns the store of opened documents.
func (w *Workspace) Documents() *Store { return w.docs }

// Contains reports whether path lies under the root.
func (w *Workspace) Contains(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Rel returns path relative to the root with forward slashes.
func (w *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// IsHeader reports whether path has a header extension.
func (w *Workspace) IsHeader(path string) bool {
	return hasExtension(path, w.opts.HeaderExtensions)
}

// IsSource reports whether path has a source extension.
func (w *Workspace) IsSource(path string) bool {
	return hasExtension(path, w.opts.SourceExtensions)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Ignored reports whether path is skipped when scanning the workspace:
// hidden entries, gitignored paths, detected build trees and the configured
// exclude patterns.
func (w *Workspace) Ignored(path string, isDir bool) bool {
	if !w.Contains(path) {
		return true
	}
	rel := w.Rel(path)
	if rel == "." {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if w.auto.Excludes(rel) {
		return true
	}
	if w.gi != nil {
		p := rel
		if isDir {
			p += "/"
		}
		if w.gi.MatchesPath(p) {
			return true
		}
	}
	for _, pattern := range w.opts.Exclude {
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "/**"), "/*")
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}

// Files returns every header and source file of the workspace, sorted.
func (w *Workspace) Files() ([]string, error) {
	return w.filesUnder(w.root, func(path string) bool {
		return w.IsHeader(path) || w.IsSource(path)
	})
}

func (w *Workspace) filesUnder(dir string, keep func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && w.Ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if keep(path) && !w.Ignored(path, false) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadGitignore loads the global and repository .gitignore patterns.
func LoadGitignore(root string) []string {
	var patterns []string

	if homeDir, err := os.UserHomeDir(); err == nil {
		if content, err := os.ReadFile(filepath.Join(homeDir, ".gitignore")); err == nil {
			patterns = append(patterns, parseGitignore(string(content))...)
		}
	}

	if content, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		patterns = append(patterns, parseGitignore(string(content))...)
	}

	return patterns
}

// parseGitignore drops blank lines and comments.
func parseGitignore(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns
}

// CompileGitignore compiles patterns into a matcher, or nil for none.
func CompileGitignore(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}
