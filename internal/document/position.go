package document

import "fmt"

// Position is a zero-based line and byte column.
type Position struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

// Compare returns -1, 0 or 1 when p is before, equal to, or after other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Character < other.Character:
		return -1
	case p.Character > other.Character:
		return 1
	}
	return 0
}

// Before reports whether p comes before other.
func (p Position) Before(other Position) bool { return p.Compare(other) < 0 }

// After reports whether p comes after other.
func (p Position) After(other Position) bool { return p.Compare(other) > 0 }

// BeforeOrEqual reports whether p does not come after other.
func (p Position) BeforeOrEqual(other Position) bool { return p.Compare(other) <= 0 }

// AfterOrEqual reports whether p does not come before other.
func (p Position) AfterOrEqual(other Position) bool { return p.Compare(other) >= 0 }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// NewRange returns the range between two positions, ordering them if needed.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Contains reports whether the position lies within the range, inclusive of both ends.
func (r Range) Contains(p Position) bool {
	return r.Start.BeforeOrEqual(p) && p.BeforeOrEqual(r.End)
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return r.Contains(other.Start) && r.Contains(other.End)
}

// Union returns the smallest range containing both ranges.
func (r Range) Union(other Range) Range {
	start, end := r.Start, r.End
	if other.Start.Before(start) {
		start = other.Start
	}
	if other.End.After(end) {
		end = other.End
	}
	return Range{Start: start, End: end}
}

// WithStart returns a copy of r starting at p.
func (r Range) WithStart(p Position) Range {
	return Range{Start: p, End: r.End}
}

// WithEnd returns a copy of r ending at p.
func (r Range) WithEnd(p Position) Range {
	return Range{Start: r.Start, End: p}
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
