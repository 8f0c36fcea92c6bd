package lang

import "strings"

// line is a single line of source text. The content is src[start:end],
// excluding the line terminator; next is the offset of the following line.
type line struct {
	start, end, next int
}

// text returns the line content with any trailing carriage return removed.
func (ln line) text(src string) string {
	return strings.TrimSuffix(src[ln.start:ln.end], "\r")
}

// lineAt returns the line starting at pos, bounded by limit.
func lineAt(src string, pos, limit int) line {
	i := strings.IndexByte(src[pos:limit], '\n')
	if i < 0 {
		return line{start: pos, end: limit, next: limit}
	}

	return line{start: pos, end: pos + i, next: pos + i + 1}
}

// isSeparator reports whether the line is a section separator: two or more
// '=' characters and nothing else.
func (ln line) isSeparator(src string) bool {
	s := ln.text(src)
	if len(s) < 2 {
		return false
	}

	return strings.Count(s, "=") == len(s)
}

// leadingSpace returns the number of leading space and tab bytes in s.
func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// containsMarkup reports whether s contains a directive or comment opener.
func containsMarkup(s string) bool {
	return strings.Contains(s, "{{") ||
		strings.Contains(s, "{%") ||
		strings.Contains(s, "{#")
}
