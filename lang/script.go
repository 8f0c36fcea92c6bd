package lang

import "strings"

// ScriptPayload is the opaque code block of a document. Code is the text
// between the open and close tags, unmodified; when the block is untagged it
// is the whole section.
type ScriptPayload struct {
	base

	Code     string
	CodeSpan Span
	OpenTag  string // e.g. "<?php", empty when absent
	HasOpen  bool
	HasClose bool
}

// NodeKind implements Node.
func (*ScriptPayload) NodeKind() NodeKind { return KindScript }

// Tagged reports whether the payload was delimited by an open tag.
func (s *ScriptPayload) Tagged() bool { return s.HasOpen }

// hasOpenTag reports whether s begins with a script open tag.
func hasOpenTag(s string) bool { return strings.HasPrefix(s, "<?") }

// scriptOpenTag returns the open tag at the start of s: "<?" followed by an
// optional alphabetic name, as in "<?php".
func scriptOpenTag(s string) string {
	if !hasOpenTag(s) {
		return ""
	}

	i := 2
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}

	return s[:i]
}

// extractScript slices the payload out of src[start:end].
func extractScript(src string, idx lineIndex, start, end int) *ScriptPayload {
	s := &ScriptPayload{base: base{span: idx.span(start, end)}}

	region := src[start:end]
	body := strings.TrimLeft(region, " \t\r\n")

	if !hasOpenTag(body) {
		s.Code = region
		s.CodeSpan = s.span

		return s
	}

	s.HasOpen = true
	s.OpenTag = scriptOpenTag(body)

	codeStart := start + len(region) - len(body) + len(s.OpenTag)
	codeEnd := end

	// "?>" directly after the open tag belongs to it when another close
	// tag follows, as in "<?open?>...?>".
	if strings.HasPrefix(src[codeStart:end], "?>") &&
		strings.Contains(src[codeStart+2:end], "?>") {
		s.OpenTag += "?>"
		codeStart += 2
	}

	if i := strings.LastIndex(src[codeStart:end], "?>"); i >= 0 {
		s.HasClose = true
		codeEnd = codeStart + i
	}

	s.Code = src[codeStart:codeEnd]
	s.CodeSpan = idx.span(codeStart, codeEnd)

	return s
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
