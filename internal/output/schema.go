package output

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/oracle"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// File statuses reported in FileChange.Status.
const (
	StatusModified = "modified"
	StatusCreated  = "created"
)

// EditOutput describes the changes a command produced.
type EditOutput struct {
	// Command is the command that produced the edit, e.g. "add-definition"
	Command string `yaml:"command" json:"command"`

	// Applied is false for --dry-run
	Applied bool `yaml:"applied" json:"applied"`

	// Files lists every touched file
	Files []FileChange `yaml:"files" json:"files"`

	// Reveal is the location of the main piece of generated code
	// Example: "src/widget.cpp:12:1"
	Reveal string `yaml:"reveal,omitempty" json:"reveal,omitempty"`

	// Generated names what was generated when a command produces several
	// pieces, such as a getter and a setter
	Generated []string `yaml:"generated,omitempty" json:"generated,omitempty"`

	// Skipped explains requested pieces that were left out
	Skipped []string `yaml:"skipped,omitempty" json:"skipped,omitempty"`

	// Diff is the unified diff of the whole edit (dense only)
	Diff string `yaml:"diff,omitempty" json:"diff,omitempty"`
}

// FileChange summarizes the edits of one file.
type FileChange struct {
	Path   string `yaml:"path" json:"path"`
	Status string `yaml:"status" json:"status"`
	Edits  int    `yaml:"edits" json:"edits"`

	// Line counts (medium and dense)
	Added   int32 `yaml:"added,omitempty" json:"added,omitempty"`
	Changed int32 `yaml:"changed,omitempty" json:"changed,omitempty"`
	Deleted int32 `yaml:"deleted,omitempty" json:"deleted,omitempty"`
}

// NewEditOutput summarizes w. Paths are shown relative to root.
func NewEditOutput(command, root string, w *edit.WorkspaceEdit, reveal *oracle.Location, applied bool) (*EditOutput, error) {
	out := &EditOutput{
		Command: command,
		Applied: applied,
		Files:   []FileChange{},
	}

	for _, f := range w.Files() {
		fd, err := f.FileDiff(root)
		if err != nil {
			return nil, err
		}
		stat := fd.Stat()
		change := FileChange{
			Path:    RelPath(root, f.Path),
			Status:  StatusModified,
			Edits:   len(f.Edits),
			Added:   stat.Added,
			Changed: stat.Changed,
			Deleted: stat.Deleted,
		}
		if f.Create {
			change.Status = StatusCreated
			change.Edits = 1
		}
		out.Files = append(out.Files, change)
	}

	diff, err := w.Diff(root)
	if err != nil {
		return nil, err
	}
	out.Diff = string(diff)

	if reveal != nil {
		out.Reveal = FormatLocation(root, reveal.Path, reveal.Range.Start)
	}
	return out, nil
}

// withDensity returns a copy of o holding only what d shows.
func (o *EditOutput) withDensity(d Density) *EditOutput {
	c := *o
	if !d.IncludesDiff() {
		c.Diff = ""
	}
	if !d.IncludesStats() {
		c.Files = make([]FileChange, len(o.Files))
		for i, f := range o.Files {
			c.Files[i] = FileChange{Path: f.Path, Status: f.Status, Edits: f.Edits}
		}
	}
	return &c
}

// SymbolOutput is one symbol of a file.
type SymbolOutput struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`

	// Location is the line range in format: path:start-end
	// Example: "include/widget.h:12-40"
	Location string `yaml:"location" json:"location"`

	// Detail is the type or signature reported for the symbol
	Detail string `yaml:"detail,omitempty" json:"detail,omitempty"`

	Children []*SymbolOutput `yaml:"children,omitempty" json:"children,omitempty"`
}

// SymbolListOutput lists symbols of one file.
type SymbolListOutput struct {
	Path    string          `yaml:"path" json:"path"`
	Count   int             `yaml:"count" json:"count"`
	Symbols []*SymbolOutput `yaml:"symbols" json:"symbols"`
}

// NewSymbolTree converts the symbol tree of a file, keeping the nesting.
func NewSymbolTree(root string, t *symbol.Tree) *SymbolListOutput {
	out := &SymbolListOutput{Path: RelPath(root, t.Path), Symbols: []*SymbolOutput{}}
	var convert func(n *symbol.Node) *SymbolOutput
	convert = func(n *symbol.Node) *SymbolOutput {
		out.Count++
		s := newSymbolOutput(root, t.Path, n)
		for _, child := range t.Children(n) {
			s.Children = append(s.Children, convert(child))
		}
		return s
	}
	for _, n := range t.TopLevel() {
		out.Symbols = append(out.Symbols, convert(n))
	}
	return out
}

// NewSymbolList lists nodes of the file at path without nesting.
func NewSymbolList(root, path string, nodes []*symbol.Node) *SymbolListOutput {
	out := &SymbolListOutput{Path: RelPath(root, path), Count: len(nodes), Symbols: []*SymbolOutput{}}
	for _, n := range nodes {
		out.Symbols = append(out.Symbols, newSymbolOutput(root, path, n))
	}
	return out
}

func newSymbolOutput(root, path string, n *symbol.Node) *SymbolOutput {
	return &SymbolOutput{
		Name:     n.Name,
		Kind:     n.Kind.String(),
		Location: FormatRange(root, path, n.Range),
		Detail:   n.Detail,
	}
}

// CacheOutput reports the contents of the cache database.
type CacheOutput struct {
	Path    string `yaml:"path" json:"path"`
	Pairs   int64  `yaml:"pairs" json:"pairs"`
	Symbols int64  `yaml:"symbols" json:"symbols"`
}

// PairsOutput lists the cached header/source pairs.
type PairsOutput struct {
	Count int          `yaml:"count" json:"count"`
	Pairs []PairOutput `yaml:"pairs" json:"pairs"`
}

// PairOutput is one header/source pair.
type PairOutput struct {
	Header string `yaml:"header" json:"header"`
	Source string `yaml:"source" json:"source"`
}

// NewPairsOutput keeps one direction of every pair in matches, the one keyed
// by a header.
func NewPairsOutput(root string, matches map[string]string, isHeader func(string) bool) *PairsOutput {
	out := &PairsOutput{Pairs: []PairOutput{}}
	for path, match := range matches {
		if !isHeader(path) {
			continue
		}
		out.Pairs = append(out.Pairs, PairOutput{Header: RelPath(root, path), Source: RelPath(root, match)})
	}
	sort.Slice(out.Pairs, func(i, j int) bool { return out.Pairs[i].Header < out.Pairs[j].Header })
	out.Count = len(out.Pairs)
	return out
}

// RelPath returns path relative to root, or path itself when it lies
// outside root.
func RelPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// FormatLocation renders a position as path:line:column, 1-based.
func FormatLocation(root, path string, p document.Position) string {
	return fmt.Sprintf("%s:%d:%d", RelPath(root, path), p.Line+1, p.Character+1)
}

// FormatRange renders the lines of r as path:start-end, 1-based.
func FormatRange(root, path string, r document.Range) string {
	return fmt.Sprintf("%s:%d-%d", RelPath(root, path), r.Start.Line+1, r.End.Line+1)
}
