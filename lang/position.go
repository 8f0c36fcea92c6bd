package lang

import (
	"log/slog"
	"sort"
	"strconv"
)

// Position identifies a location in the source text.
// Offset is a zero-based byte offset; Line and Column are one-based, and
// Column counts bytes from the start of the line.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", p.Offset),
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// Span is the half-open byte range [Start.Offset, End.Offset) of a node.
type Span struct {
	Start Position
	End   Position
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End.Offset - s.Start.Offset }

// Contains reports whether the byte offset lies within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Text returns the slice of src covered by the span.
func (s Span) Text(src string) string {
	if s.Start.Offset < 0 || s.End.Offset > len(src) ||
		s.Start.Offset > s.End.Offset {
		return ""
	}

	return src[s.Start.Offset:s.End.Offset]
}

// String returns the span formatted as "line:column-line:column".
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// lineIndex maps byte offsets to line and column numbers.
type lineIndex []int // offsets of the first byte of each line

func newLineIndex(src string) lineIndex {
	idx := lineIndex{0}

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}

	return idx
}

// position returns the Position of the given byte offset.
func (idx lineIndex) position(offset int) Position {
	line := sort.Search(len(idx), func(i int) bool {
		return idx[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}

	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - idx[line] + 1,
	}
}

// span returns the Span covering [start, end).
func (idx lineIndex) span(start, end int) Span {
	return Span{Start: idx.position(start), End: idx.position(end)}
}
