package edit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-diff/diff"
)

// ContextLines is the number of unchanged lines shown around a change.
const ContextLines = 3

type lineOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

// lineOps diffs two texts line by line.
func lineOps(old, new string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		kind := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				ops = append(ops, lineOp{kind: kind, text: line})
			}
		}
	}
	return ops
}

// hunks groups changed lines with their context. Changes separated by no
// more than twice the context share a hunk.
func hunks(ops []lineOp) []*diff.Hunk {
	var out []*diff.Hunk
	oldLine, newLine := make([]int32, len(ops)+1), make([]int32, len(ops)+1)
	oldLine[0], newLine[0] = 1, 1
	for i, op := range ops {
		oldLine[i+1], newLine[i+1] = oldLine[i], newLine[i]
		if op.kind != '+' {
			oldLine[i+1]++
		}
		if op.kind != '-' {
			newLine[i+1]++
		}
	}

	for i := 0; i < len(ops); {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		start := max(i-ContextLines, 0)
		end := i + 1
		for j := i; j < len(ops) && j-end <= 2*ContextLines; j++ {
			if ops[j].kind != ' ' {
				end = j + 1
			}
		}
		stop := min(end+ContextLines, len(ops))
		out = append(out, hunk(ops[start:stop], oldLine[start], newLine[start]))
		i = stop
	}
	return out
}

func hunk(ops []lineOp, oldStart, newStart int32) *diff.Hunk {
	h := &diff.Hunk{OrigStartLine: oldStart, NewStartLine: newStart}
	var body []byte
	for _, op := range ops {
		if op.kind != '+' {
			h.OrigLines++
		}
		if op.kind != '-' {
			h.NewLines++
		}
		body = append(body, op.kind)
		body = append(body, op.text...)
		if op.kind == '-' && !strings.HasSuffix(op.text, "\n") {
			body = append(body, '\n')
			h.OrigNoNewlineAt = int32(len(body))
		}
	}
	if h.OrigLines == 0 {
		h.OrigStartLine--
	}
	if h.NewLines == 0 {
		h.NewStartLine--
	}
	h.Body = body
	return h
}

// FileDiff returns the unified diff of one file edit. Paths are shown
// relative to root.
func (f *FileEdit) FileDiff(root string) (*diff.FileDiff, error) {
	result, err := f.Result()
	if err != nil {
		return nil, err
	}
	name := f.Path
	if rel, err := filepath.Rel(root, f.Path); err == nil && !strings.HasPrefix(rel, "..") {
		name = filepath.ToSlash(rel)
	}
	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks(lineOps(f.Original(), result)),
	}
	if f.Create {
		fd.OrigName = "/dev/null"
	}
	return fd, nil
}

// Diff renders every file edit as one unified diff.
func (w *WorkspaceEdit) Diff(root string) ([]byte, error) {
	var fds []*diff.FileDiff
	for _, f := range w.files {
		fd, err := f.FileDiff(root)
		if err != nil {
			return nil, err
		}
		if len(fd.Hunks) > 0 {
			fds = append(fds, fd)
		}
	}
	out, err := diff.PrintMultiFileDiff(fds)
	if err != nil {
		return nil, fmt.Errorf("print diff: %w", err)
	}
	return out, nil
}

// Stat sums the lines added, changed and deleted by the edit.
func (w *WorkspaceEdit) Stat(root string) (diff.Stat, error) {
	var total diff.Stat
	for _, f := range w.files {
		fd, err := f.FileDiff(root)
		if err != nil {
			return diff.Stat{}, err
		}
		s := fd.Stat()
		total.Added += s.Added
		total.Changed += s.Changed
		total.Deleted += s.Deleted
	}
	return total, nil
}
