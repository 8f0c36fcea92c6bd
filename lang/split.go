package lang

import (
	"regexp"
	"strings"
)

// Shape records which sections a document contains.
type Shape uint8

const (
	ShapeConfig Shape = 1 << iota
	ShapeScript
	ShapeMarkup
)

// Has reports whether every section in t is present in s.
func (s Shape) Has(t Shape) bool { return s&t == t }

// String returns the section names joined by '+', or "empty".
func (s Shape) String() string {
	names := make([]string, 0, 3)

	if s.Has(ShapeConfig) {
		names = append(names, "configuration")
	}

	if s.Has(ShapeScript) {
		names = append(names, "script")
	}

	if s.Has(ShapeMarkup) {
		names = append(names, "markup")
	}

	if len(names) == 0 {
		return "empty"
	}

	return strings.Join(names, "+")
}

// Layout is the result of splitting a document into sections. The Config,
// Script, Markup and Separators spans partition the source: in source order
// they cover every byte exactly once.
type Layout struct {
	Shape      Shape
	Config     *Span  // nil when there is no configuration section
	Script     *Span  // nil when there is no script section
	Markup     Span   // always set, possibly empty
	Separators []Span // structural separator lines, terminator included
}

// Split classifies src into its sections. It never fails: a document whose
// header cannot be read as configuration or script is markup only. Warnings
// describe input that looks like a header but was not treated as one.
func Split(src string) (*Layout, []*Diagnostic) {
	return split(src, newLineIndex(src))
}

type splitter struct {
	src string
	idx lineIndex
}

// split tries each document shape in order of preference and returns the
// first one that fits:
//
//  1. configuration == script == markup
//  2. configuration == markup
//  3. script == markup
//  4. markup
//
// Shapes without markup are the same shapes with an empty markup section.
func split(src string, idx lineIndex) (*Layout, []*Diagnostic) {
	sp := splitter{src: src, idx: idx}

	first, ok := sp.nextSeparator(0)
	if !ok {
		return sp.markupOnly()
	}

	if sp.isConfig(0, first.start) {
		second, ok := sp.nextSeparator(first.next)
		if ok && sp.isScript(first.next, second.start, true) {
			return sp.layout(
				&[2]int{0, first.start},
				&[2]int{first.next, second.start},
				first, second,
			), nil
		}

		return sp.layout(&[2]int{0, first.start}, nil, first), nil
	}

	if sp.isScript(0, first.start, false) {
		return sp.layout(nil, &[2]int{0, first.start}, first), nil
	}

	return sp.markupOnly()
}

// nextSeparator returns the first separator line at or after the line
// starting at from.
func (sp splitter) nextSeparator(from int) (line, bool) {
	for pos := from; pos < len(sp.src); {
		ln := lineAt(sp.src, pos, len(sp.src))
		if ln.isSeparator(sp.src) {
			return ln, true
		}

		pos = ln.next
	}

	return line{}, false
}

// isConfig reports whether src[start:end] reads entirely as configuration.
// Markup openers are allowed only inside quoted values.
func (sp splitter) isConfig(start, end int) bool {
	section, diags := parseConfig(sp.src, sp.idx, start, end)
	if len(diags) > 0 {
		return false
	}

	for _, e := range section.Entries() {
		if e.Value != nil && e.Value.Kind != ValueQuoted && containsMarkup(e.Value.Text) {
			return false
		}
	}

	return true
}

// htmlTagPattern matches the start of an HTML element, end tag, comment or
// doctype.
var htmlTagPattern = regexp.MustCompile(`<(?:[A-Za-z][A-Za-z0-9-]*[\s/>]|/[A-Za-z]|!)`)

// isScript reports whether src[start:end] is a script block. A tagged block
// starts with an open tag after optional whitespace. An untagged block is
// accepted only when bare is set and it holds neither a markup construct
// nor an HTML tag.
func (sp splitter) isScript(start, end int, bare bool) bool {
	region := sp.src[start:end]
	if hasOpenTag(strings.TrimLeft(region, " \t\r\n")) {
		return true
	}

	return bare && !containsMarkup(region) && !htmlTagPattern.MatchString(region)
}

func (sp splitter) layout(config, script *[2]int, seps ...line) *Layout {
	l := &Layout{}

	if config != nil {
		span := sp.idx.span(config[0], config[1])
		l.Config = &span
		l.Shape |= ShapeConfig
	}

	if script != nil {
		span := sp.idx.span(script[0], script[1])
		l.Script = &span
		l.Shape |= ShapeScript
	}

	for _, sep := range seps {
		l.Separators = append(l.Separators, sp.idx.span(sep.start, sep.next))
	}

	last := seps[len(seps)-1]
	l.Markup = sp.idx.span(last.next, len(sp.src))

	if l.Markup.Len() > 0 {
		l.Shape |= ShapeMarkup
	}

	return l
}

func (sp splitter) markupOnly() (*Layout, []*Diagnostic) {
	l := &Layout{Markup: sp.idx.span(0, len(sp.src))}
	if len(sp.src) > 0 {
		l.Shape = ShapeMarkup
	}

	body := strings.TrimLeft(sp.src, " \t\r\n")
	if !hasOpenTag(body) {
		return l, nil
	}

	at := len(sp.src) - len(body)

	return l, []*Diagnostic{{
		Kind:     ErrSplit,
		Severity: SeverityWarning,
		Message:  "script block is not followed by a section separator; treated as markup",
		Token:    scriptOpenTag(body),
		Span:     sp.idx.span(at, at+len(scriptOpenTag(body))),
	}}
}
