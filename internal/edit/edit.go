// Package edit collects text edits across files, applies them to disk and
// renders them as unified diffs.
package edit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hargabyte/cppgen/internal/document"
)

// ErrOverlappingEdits is returned when two edits of a file touch the same text.
var ErrOverlappingEdits = errors.New("overlapping edits")

// TextEdit replaces the text of Range with NewText. An empty range inserts.
type TextEdit struct {
	Range   document.Range
	NewText string
}

// FileEdit holds the edits of one file. Edits at the same position are
// applied in the order they were added.
type FileEdit struct {
	Path string
	// Doc is the text the edits were computed against. It is nil for a file
	// being created.
	Doc   *document.Document
	Edits []TextEdit
	// Create marks a new file whose content is Content.
	Create  bool
	Content string
}

// Original returns the text before editing.
func (f *FileEdit) Original() string {
	if f.Doc == nil {
		return ""
	}
	return f.Doc.Text()
}

// sorted returns the edits ordered by start position, keeping insertion
// order for edits that start at the same place.
func (f *FileEdit) sorted() ([]TextEdit, error) {
	edits := make([]TextEdit, len(f.Edits))
	copy(edits, f.Edits)
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Range.Start.Before(edits[j].Range.Start)
	})
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.Start.Before(edits[i-1].Range.End) {
			return nil, fmt.Errorf("%s: %w at %s", f.Path, ErrOverlappingEdits, edits[i].Range.Start)
		}
	}
	return edits, nil
}

// Result returns the text after editing.
func (f *FileEdit) Result() (string, error) {
	if f.Create {
		return f.Content, nil
	}
	edits, err := f.sorted()
	if err != nil {
		return "", err
	}
	text := f.Doc.Text()
	var sb strings.Builder
	last := 0
	for _, e := range edits {
		start, end := f.Doc.OffsetAt(e.Range.Start), f.Doc.OffsetAt(e.Range.End)
		sb.WriteString(text[last:start])
		sb.WriteString(e.NewText)
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// WorkspaceEdit is a set of file edits, kept in the order files were first
// touched.
type WorkspaceEdit struct {
	files []*FileEdit
	index map[string]*FileEdit
}

// New returns an empty workspace edit.
func New() *WorkspaceEdit {
	return &WorkspaceEdit{index: make(map[string]*FileEdit)}
}

func (w *WorkspaceEdit) file(doc *document.Document) *FileEdit {
	if f, ok := w.index[doc.Path()]; ok {
		return f
	}
	f := &FileEdit{Path: doc.Path(), Doc: doc}
	w.files = append(w.files, f)
	w.index[f.Path] = f
	return f
}

// Insert adds text at p in doc.
func (w *WorkspaceEdit) Insert(doc *document.Document, p document.Position, text string) {
	w.Replace(doc, document.NewRange(p, p), text)
}

// Replace replaces the text of r in doc.
func (w *WorkspaceEdit) Replace(doc *document.Document, r document.Range, text string) {
	f := w.file(doc)
	f.Edits = append(f.Edits, TextEdit{Range: r, NewText: text})
}

// Delete removes the text of r in doc.
func (w *WorkspaceEdit) Delete(doc *document.Document, r document.Range) {
	w.Replace(doc, r, "")
}

// CreateFile adds a new file with the given content.
func (w *WorkspaceEdit) CreateFile(path, content string) {
	f := &FileEdit{Path: path, Create: true, Content: content}
	w.files = append(w.files, f)
	w.index[path] = f
}

// Files returns the file edits in the order the files were first touched.
func (w *WorkspaceEdit) Files() []*FileEdit {
	return w.files
}

// Empty reports whether the edit changes nothing.
func (w *WorkspaceEdit) Empty() bool {
	for _, f := range w.files {
		if f.Create || len(f.Edits) > 0 {
			return false
		}
	}
	return true
}

// Paths returns the paths of the edited files.
func (w *WorkspaceEdit) Paths() []string {
	paths := make([]string, len(w.files))
	for i, f := range w.files {
		paths[i] = f.Path
	}
	return paths
}

// Apply writes every edited file. All results are computed before anything
// is written, so an invalid edit leaves the disk untouched. A created file
// must not exist yet.
func (w *WorkspaceEdit) Apply() error {
	results := make([]string, len(w.files))
	for i, f := range w.files {
		text, err := f.Result()
		if err != nil {
			return err
		}
		if f.Create {
			if _, err := os.Stat(f.Path); err == nil {
				return fmt.Errorf("create %s: %w", f.Path, os.ErrExist)
			}
		}
		results[i] = text
	}
	for i, f := range w.files {
		if err := writeFile(f.Path, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// writeFile replaces path through a temporary file in the same directory,
// keeping the mode of an existing file.
func writeFile(path, text string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
